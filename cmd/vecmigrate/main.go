// Command vecmigrate moves a Weaviate collection from the legacy
// single-vector layout to a named vector called "default".
//
// Usage:
//
//	vecmigrate migrate --collection Vector_index_abc_Node --backup-id dify-backup-before-upgrade
//	vecmigrate migrate --all --prefix Vector_index_
//	vecmigrate inspect --prefix Vector_index_
//
// The exit code is 0 when the migration reached Done and 1 otherwise. With
// --all it is 1 when any collection failed.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
