package model_test

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func equateEmpty() cmp.Option {
	return cmpopts.EquateEmpty()
}
