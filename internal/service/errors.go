package service

import "errors"

var (
	ErrRoomNameRequired = errors.New("room name is required")
	ErrUsernameRequired = errors.New("username is required")
	ErrRoomNotFound     = errors.New("room not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrMessageNotFound  = errors.New("message not found")
)
