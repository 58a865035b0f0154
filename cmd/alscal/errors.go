package main

import "errors"

var errUsage = errors.New("invalid arguments")
