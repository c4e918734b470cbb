// SPDX-License-Identifier: Apache-2.0
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"scir/internal/lsp"
)

const lsName = "scir" // Name identifier for the language server

var (
	version = "0.0.1"        // Server version
	handler protocol.Handler // Protocol handler instance (wired up below)
)

func main() {
	// Configure debug logging (1 = debug level, nil = default logger)
	commonlog.Configure(1, nil)

	scirHandler := lsp.NewHandler()

	// Wire up the handler with specific LSP method implementations
	handler = protocol.Handler{
		Initialize:            scirHandler.Initialize,
		Initialized:           scirHandler.Initialized,
		Shutdown:              scirHandler.Shutdown,
		SetTrace:              scirHandler.SetTrace,
		TextDocumentDidOpen:   scirHandler.TextDocumentDidOpen,
		TextDocumentDidChange: scirHandler.TextDocumentDidChange,
		TextDocumentDidClose:  scirHandler.TextDocumentDidClose,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Printf("Starting %s LSP server %s...\n", lsName, version)

	// Serve over standard input/output, the transport editors expect
	err := s.RunStdio()
	if err != nil {
		log.Println("Error starting LSP server:", err)
		os.Exit(1)
	}
}
