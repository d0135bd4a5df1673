package main

import (
	"fmt"
	"os"

	"github.com/replicest/replicvar/server"
)

func main() {
	msgAddr := fmt.Sprintf("/run/user/%d/replicvar_server", os.Getuid())
	dataAddr := msgAddr + "_data"

	srv, err := server.New(msgAddr, dataAddr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer srv.Close()

	if err := srv.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
