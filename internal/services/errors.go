package services

import "errors"

var errNotAuthenticated = errors.New("not authenticated")
