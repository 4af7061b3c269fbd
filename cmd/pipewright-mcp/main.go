package main

import (
	"fmt"
	"os"

	"github.com/pipewright/pipewright/pkg/mcp"
)

func main() {
	apiURL := os.Getenv("PIPEWRIGHT_API_URL")

	s := mcp.NewServer(apiURL)
	fmt.Fprintln(os.Stderr, `{"level":"info","msg":"system_started","component":"pipewright-mcp"}`)
	if err := s.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, `{"level":"fatal","msg":"mcp_server_failed","error":"%v"}`+"\n", err)
		os.Exit(1)
	}
}
