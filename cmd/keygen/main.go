// Package main provides a CLI tool for generating signing keypairs and test
// issuer tokens for the BlockVerify API. Generated tokens use the dev signing
// key and will NOT work in production.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Goodnessmbakara/BlockVerify/internal/platform/middleware"
	"github.com/Goodnessmbakara/BlockVerify/internal/wallet"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultTokenTTL = 15 * time.Minute
)

type keypairOutput struct {
	Address       string `json:"address"`
	SecretBase58  string `json:"secret_base58"`
	SecretJSON    []int  `json:"secret_json_array"`
	Usage         string `json:"usage"`
	FundingFaucet string `json:"funding_faucet"`
}

type tokenOutput struct {
	Token     string `json:"token"`
	ExpiresIn string `json:"expires_in"`
	IssuerID  string `json:"issuer_id"`
	Usage     string `json:"usage"`
}

func main() {
	keypairCmd := flag.NewFlagSet("keypair", flag.ExitOnError)
	keypairJSON := keypairCmd.Bool("json", false, "Output as JSON")

	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	tokenIssuerID := tokenCmd.String("issuer-id", "", "Issuer principal (UUID). Generated if empty.")
	tokenKey := tokenCmd.String("key", devSigningKey, "JWT signing key")
	tokenTTL := tokenCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	tokenJSON := tokenCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "keypair":
		keypairCmd.Parse(os.Args[2:])
		generateKeypair(*keypairJSON)
	case "token":
		tokenCmd.Parse(os.Args[2:])
		generateToken(*tokenIssuerID, *tokenKey, *tokenTTL, *tokenJSON)
	default:
		printUsage()
		os.Exit(1)
	}
}

func generateKeypair(asJSON bool) {
	keypair, err := wallet.GenerateKeypair()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to generate keypair:", err)
		os.Exit(1)
	}

	secretJSON := make([]int, len(keypair.PrivateKey))
	for i, b := range keypair.PrivateKey {
		secretJSON[i] = int(b)
	}

	output := keypairOutput{
		Address:       keypair.Address(),
		SecretBase58:  keypair.ExportBase58(),
		SecretJSON:    secretJSON,
		Usage:         "export WALLET_SECRET_KEY=<secret_base58>",
		FundingFaucet: "https://faucet.solana.com",
	}

	if asJSON {
		printJSON(output)
		return
	}

	fmt.Println("Address:       ", output.Address)
	fmt.Println("Secret (b58):  ", output.SecretBase58)
	fmt.Println()
	fmt.Println("Export the secret before starting the server:")
	fmt.Println("  export WALLET_SECRET_KEY=" + output.SecretBase58)
	fmt.Println()
	fmt.Println("Fund the address on devnet to enable real anchoring:")
	fmt.Println("  " + output.FundingFaucet)
}

func generateToken(issuerID, key string, ttl time.Duration, asJSON bool) {
	if issuerID == "" {
		issuerID = uuid.New().String()
	}

	now := time.Now()
	claims := middleware.IssuerClaims{
		Role: middleware.RoleIssuer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   issuerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to sign token:", err)
		os.Exit(1)
	}

	output := tokenOutput{
		Token:     signed,
		ExpiresIn: ttl.String(),
		IssuerID:  issuerID,
		Usage:     `curl -H "Authorization: Bearer <token>" -X POST /credentials/issue`,
	}

	if asJSON {
		printJSON(output)
		return
	}

	fmt.Println("Token:     ", output.Token)
	fmt.Println("Issuer ID: ", output.IssuerID)
	fmt.Println("Expires in:", output.ExpiresIn)
}

func printJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}

func printUsage() {
	fmt.Println("Usage: keygen <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  keypair    Generate a ledger signing keypair")
	fmt.Println("  token      Generate a test issuer JWT (dev signing key)")
	fmt.Println()
	fmt.Println("Run 'keygen <command> -h' for command flags.")
}
