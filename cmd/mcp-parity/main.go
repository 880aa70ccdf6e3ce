// Command mcp-parity runs the MCP tool server for release pipeline operations.
// Uses stdio transport for integration with AI assistants.
package main

import (
	"context"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.temporal.io/sdk/client"

	"github.com/algoparity/parity-go/internal/mcpserver"
	"github.com/algoparity/parity-go/internal/temporal/querier"
)

func main() {
	c, err := client.Dial(client.Options{})
	if err != nil {
		log.Fatalf("unable to create Temporal client: %v", err)
	}
	defer c.Close()

	q := querier.New(c)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "parity-go",
		Version: "v1.0.0",
	}, nil)
	mcpserver.RegisterTools(server, q)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}
