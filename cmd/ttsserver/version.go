package main

import (
	"context"
	"fmt"

	"github.com/a-h/ttsserver"
)

type VersionCommand struct {
}

func (c VersionCommand) Run(ctx context.Context) (err error) {
	fmt.Println(ttsserver.Version)
	return nil
}
