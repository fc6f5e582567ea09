package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"cloth-auth-go/internal/config"
	"cloth-auth-go/internal/container"
)

const usage = `Usage: authcli <command> [flags]

Commands:
  register -image <path>           register a new textile item
  verify   -id <id> -image <path>  verify a photograph against a stored item
  list                             list registered items
  delete   -id <id>                delete all records for an item
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	// The CLI always registers and verifies from local files.
	cfg.ImageSource = "local"

	c, err := container.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer c.Close()

	// CLI runs are bounded by the extraction timeout; there is no
	// surrounding request deadline.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ExtractionTimeout)
	defer cancel()

	switch os.Args[1] {
	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		imagePath := fs.String("image", "", "Path to the item photograph")
		fs.Parse(os.Args[2:])
		if *imagePath == "" {
			log.Fatal("Please provide an image with -image")
		}
		runRegister(ctx, c, *imagePath)

	case "verify":
		fs := flag.NewFlagSet("verify", flag.ExitOnError)
		itemID := fs.String("id", "", "Item identifier to verify against")
		imagePath := fs.String("image", "", "Path to the verification photograph")
		fs.Parse(os.Args[2:])
		if *itemID == "" || *imagePath == "" {
			log.Fatal("Please provide both -id and -image")
		}
		runVerify(ctx, c, *itemID, *imagePath)

	case "list":
		runList(c)

	case "delete":
		fs := flag.NewFlagSet("delete", flag.ExitOnError)
		itemID := fs.String("id", "", "Item identifier to delete")
		fs.Parse(os.Args[2:])
		if *itemID == "" {
			log.Fatal("Please provide an id with -id")
		}
		runDelete(c, *itemID)

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runRegister(ctx context.Context, c *container.Container, imagePath string) {
	identity, report, err := c.Items().Register(ctx, imagePath)
	if err != nil {
		log.Fatalf("Registration failed: %v", err)
	}

	fmt.Println("=== Registration Results ===")
	fmt.Printf("Item ID:        %s\n", identity.ItemID)
	fmt.Printf("Features Hash:  %s\n", identity.FeaturesHash)
	fmt.Printf("Timestamp Hash: %s\n", identity.TimestampHash)
	fmt.Printf("Combined Hash:  %s\n", identity.CombinedHash)
	fmt.Printf("Created:        %s\n", identity.CreationTime)
	if len(report.Degraded) > 0 {
		fmt.Printf("Warning: degraded categories: %v\n", report.Degraded)
	}
}

func runVerify(ctx context.Context, c *container.Container, itemID, imagePath string) {
	result, err := c.Items().Verify(ctx, itemID, imagePath)
	if err != nil {
		log.Fatalf("Verification failed: %v", err)
	}

	fmt.Println("=== Verification Results ===")
	fmt.Printf("Item ID:              %s\n", result.ItemID)
	fmt.Printf("Texture Similarity:   %.2f%%\n", result.TextureSimilarity*100)
	fmt.Printf("Pattern Similarity:   %.2f%%\n", result.PatternSimilarity*100)
	fmt.Printf("Dimension Similarity: %.2f%%\n", result.DimensionSimilarity*100)
	fmt.Printf("Total Similarity:     %.2f%%\n", result.TotalSimilarity*100)
	if result.Authentic {
		fmt.Println("Status: AUTHENTIC")
	} else {
		fmt.Println("Status: NOT AUTHENTIC")
		fmt.Println("Warning: the item may have been altered or is not the original.")
	}
}

func runList(c *container.Container) {
	identities, err := c.Items().List()
	if err != nil {
		log.Fatalf("Listing failed: %v", err)
	}
	if len(identities) == 0 {
		fmt.Println("No items registered.")
		return
	}
	for i, identity := range identities {
		fmt.Printf("%d. %s  created=%s  hash=%s\n",
			i+1, identity.ItemID, identity.CreationTime.Format("2006-01-02 15:04:05"), identity.CombinedHash)
	}
}

func runDelete(c *container.Container, itemID string) {
	existed, err := c.Items().Delete(itemID)
	if err != nil {
		log.Fatalf("Deletion failed: %v", err)
	}
	if !existed {
		fmt.Printf("Item not found: %s\n", itemID)
		return
	}
	fmt.Printf("Deleted all records for %s\n", itemID)
}
