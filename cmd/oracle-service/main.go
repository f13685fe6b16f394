package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	oraclegrpc "github.com/andrescamacho/portscheduler-go/internal/adapters/grpc"
	"github.com/andrescamacho/portscheduler-go/internal/adapters/simulator"
	"github.com/andrescamacho/portscheduler-go/internal/domain/credential"
)

const defaultAddress = ":50061"

// secretsFile is the document read by -secrets
type secretsFile struct {
	Seed    uint64         `yaml:"seed"`
	Secrets map[int]string `yaml:"secrets"`
}

func main() {
	address := flag.String("address", getEnv("ORACLE_ADDRESS", defaultAddress), "Listen address (host:port or unix:/path.sock)")
	secretsPath := flag.String("secrets", "", "YAML file with seed and per-dock secrets")
	seed := flag.Uint64("seed", 1, "Seed for derived secrets (overridden by the secrets file)")
	flag.Parse()

	log.Println("Starting Oracle Service...")

	oracle, err := newOracle(*secretsPath, *seed)
	if err != nil {
		log.Fatalf("Failed to load secrets: %v", err)
	}

	network, addr := "tcp", *address
	if strings.HasPrefix(addr, "unix:") {
		network, addr = "unix", strings.TrimPrefix(addr, "unix:")
		_ = os.Remove(addr)
	}

	server, err := oraclegrpc.NewOracleServer(oraclegrpc.NewOracleService(oracle), network, addr)
	if err != nil {
		log.Fatalf("Failed to start oracle service: %v", err)
	}
	log.Printf("Listening on %s %s", network, server.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve()
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down...", sig)
	case err := <-errCh:
		log.Fatalf("Oracle service stopped: %v", err)
	}

	if err := server.Stop(); err != nil {
		log.Printf("Failed to close sessions: %v", err)
	}
	log.Println("Oracle service stopped gracefully")
}

func newOracle(path string, seed uint64) (*simulator.MemoryOracle, error) {
	if path == "" {
		log.Printf("No secrets file, deriving secrets from seed %d", seed)
		return simulator.NewMemoryOracle(seed), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc secretsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if doc.Seed != 0 {
		seed = doc.Seed
	}

	oracle := simulator.NewMemoryOracle(seed)
	for dockID, secret := range doc.Secrets {
		if !credential.IsWellFormed(secret, len(secret)) {
			return nil, fmt.Errorf("secret for dock %d is not a well-formed credential: %q", dockID, secret)
		}
		oracle.SetSecret(dockID, secret)
	}
	log.Printf("Loaded %d secrets from %s", len(doc.Secrets), path)
	return oracle, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
