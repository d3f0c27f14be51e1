// Command image-embedder computes image embeddings with a model served by
// Triton Inference Server.
//
//	image-embedder embed --normalize cat.png dog.jpg
//	image-embedder models
//	image-embedder health
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
