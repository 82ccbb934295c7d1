package model

type ServeNotificationProxyRequest struct{}
