package common

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/storage"
	"github.com/betalky/backend/pkg/xcontext"
	"github.com/nfnt/resize"
)

// ProcessIcon reads the image in the multipart field key of the request,
// resizes it to a square icon and uploads it under prefix.
func ProcessIcon(
	ctx context.Context, fileStorage storage.Storage, key, prefix string,
) (*storage.UploadResponse, error) {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return nil, errorx.New(errorx.BadRequest, "Request must be multipart form")
	}

	if err := req.ParseMultipartForm(xcontext.Configs(ctx).File.MaxSize); err != nil {
		return nil, errorx.New(errorx.BadRequest, "Request must be multipart form")
	}

	file, header, err := req.FormFile(key)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Error retrieving the file")
	}
	defer file.Close()

	if header.Size > xcontext.Configs(ctx).File.MaxSize {
		return nil, errorx.New(errorx.BadRequest, "File too large")
	}

	mime := header.Header.Get("Content-Type")
	img, err := decodeImg(mime, file)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot decode image: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Only accept jpeg, gif or png")
	}

	cfg := xcontext.Configs(ctx).Guild
	img = resize.Resize(uint(cfg.IconSize), uint(cfg.IconSize), img, resize.Lanczos2)
	b, err := encodeImg(mime, img)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot encode image: %v", err)
		return nil, errorx.Unknown
	}

	resp, err := fileStorage.Upload(ctx, &storage.UploadObject{
		Bucket:   cfg.IconBucket,
		Prefix:   prefix,
		FileName: fmt.Sprintf("%dx%d-%s", cfg.IconSize, cfg.IconSize, header.Filename),
		Mime:     mime,
		Data:     b,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upload image: %v", err)
		return nil, errorx.Unknown
	}

	return resp, nil
}

func decodeImg(mime string, data io.Reader) (image.Image, error) {
	switch mime {
	case "image/jpeg":
		return jpeg.Decode(data)
	case "image/png", "application/octet-stream":
		return png.Decode(data)
	case "image/gif":
		return gif.Decode(data)
	default:
		return nil, fmt.Errorf("unsupported mime %s", mime)
	}
}

func encodeImg(mime string, img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)

	var err error
	switch mime {
	case "image/jpeg":
		err = jpeg.Encode(buf, img, nil)
	case "image/png", "application/octet-stream":
		err = png.Encode(buf, img)
	case "image/gif":
		err = gif.Encode(buf, img, nil)
	default:
		return nil, fmt.Errorf("unsupported mime %s", mime)
	}
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
