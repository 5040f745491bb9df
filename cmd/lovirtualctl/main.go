package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Bleutonik/lovirtual-backend/pkg/sdk"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	addr := os.Getenv("LOVIRTUAL_ADDR")
	if addr == "" {
		addr = "http://localhost:7100"
	}

	client := sdk.New(addr)
	if token := os.Getenv("LOVIRTUAL_TOKEN"); token != "" {
		client.SetToken(token)
	}

	command := strings.ToLower(os.Args[1])
	args := os.Args[2:]

	switch command {
	case "login":
		if len(args) < 2 {
			log.Fatal("Usage: lovirtualctl login <username> <password>")
		}
		user, err := client.Login(args[0], args[1])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Logged in as %s (%s)\n", user.Username, user.Role)
		fmt.Printf("export LOVIRTUAL_TOKEN=%s\n", client.Token())

	case "me":
		user, err := client.Me()
		if err != nil {
			log.Fatal(err)
		}
		printJSON(user)

	case "users":
		users, err := client.Users()
		if err != nil {
			log.Fatal(err)
		}
		printJSON(users)

	case "announce":
		if len(args) < 2 {
			log.Fatal("Usage: lovirtualctl announce <title> <content> [category]")
		}
		category := "general"
		if len(args) > 2 {
			category = args[2]
		}
		announcement, err := client.CreateAnnouncement(args[0], args[1], category)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(announcement)

	case "health":
		status, err := client.Health()
		if err != nil {
			log.Fatal(err)
		}
		printJSON(status)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("lovirtualctl - admin CLI for the LoVirtual backend")
	fmt.Println("\nUsage:")
	fmt.Println("  lovirtualctl login <username> <password>")
	fmt.Println("  lovirtualctl me")
	fmt.Println("  lovirtualctl users")
	fmt.Println("  lovirtualctl announce <title> <content> [category]")
	fmt.Println("  lovirtualctl health")
	fmt.Println("\nEnvironment Variables:")
	fmt.Println("  LOVIRTUAL_ADDR    Base URL of the backend (default: http://localhost:7100)")
	fmt.Println("  LOVIRTUAL_TOKEN   Bearer token from a previous login")
}

func printJSON(v any) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(bytes))
}
