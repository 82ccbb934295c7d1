package storage

import "context"

// Storage keeps public objects such as guild icons.
type Storage interface {
	Upload(context.Context, *UploadObject) (*UploadResponse, error)
}

// UploadObject is a file to store. Guild icons use the icon bucket, the
// guilds/<guild id> prefix and a file name carrying the icon size.
type UploadObject struct {
	Bucket   string
	Prefix   string
	FileName string
	Mime     string
	Data     []byte
}

// UploadResponse holds the public url stored as the guild icon and the key of
// the object in its bucket.
type UploadResponse struct {
	Url      string
	FileName string
}
