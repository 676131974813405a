package main

import (
	"log"

	"github.com/xxxsen/davfile/cmd/davfile/cmd"
	_ "github.com/xxxsen/davfile/resource/file"
	_ "github.com/xxxsen/davfile/resource/mem"
)

func main() {
	if err := cmd.NewRoot().Execute(); err != nil {
		log.Fatalf("exec cmd failed, err:%v", err)
	}
}
