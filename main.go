package main

import (
	"log"

	"github.com/humboldtjobs/humboldt-jobs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
