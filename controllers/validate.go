package controllers

import (
	"github.com/go-playground/validator/v10"
)

// validate is shared across handlers; validator caches struct metadata.
var validate = validator.New()
