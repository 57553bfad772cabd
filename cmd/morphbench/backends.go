package main

import (
	morphbench "github.com/swdee/go-morphbench"
	"github.com/swdee/go-morphbench/backend/bild"
	"github.com/swdee/go-morphbench/backend/native"
	"github.com/swdee/go-morphbench/backend/opencv"
)

// newRegistry returns the registry of every compiled in backend
func newRegistry() (*morphbench.Registry, error) {

	reg := morphbench.NewRegistry()

	for _, register := range []func(*morphbench.Registry) error{
		opencv.Register,
		native.Register,
		bild.Register,
	} {
		if err := register(reg); err != nil {
			return nil, err
		}
	}

	return reg, nil
}
