// Command stubserver runs a local implementation of the SimuOrg API so the
// CLI can be used without the real backend.
package main

import (
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"

	"simuorg/internal/logging"
	"simuorg/internal/stubapi"
)

func main() {

	addr := flag.String("l", "127.0.0.1:8000", "address to listen on")
	dbPath := flag.String("d", "stubapi.db", "path of the SQLite database (':memory:' for throwaway state)")
	secret := flag.String("secret", "dev-only-secret", "token signing secret")
	flag.Parse()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	srv, err := stubapi.NewServer(*dbPath, []byte(*secret), logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer srv.Close()

	log.Printf("stub API listening on %s", *addr)
	if err := http.ListenAndServe(*addr, srv.Router()); err != nil {
		log.Fatalf("%v", err)
	}
}
