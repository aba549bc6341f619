// AngelaMos | 2026
// main.go

// Command genkeys generates the ES256 key pair the token signer uses.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/carterperez-dev/commerce-api/internal/auth"
)

func main() {
	privatePath := flag.String("private", "keys/private.pem", "private key output path")
	publicPath := flag.String("public", "keys/public.pem", "public key output path")
	flag.Parse()

	if err := auth.GenerateKeyPair(*privatePath, *publicPath); err != nil {
		fmt.Fprintln(os.Stderr, "generate key pair:", err)
		os.Exit(1)
	}

	fmt.Println("wrote", *privatePath, "and", *publicPath)
}
