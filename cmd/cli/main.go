/*
main.go - Command line client for the simulated-day ledger API

PURPOSE:
  Small operational client for a running server: create accounts and
  products, register deposits and purchases, and inspect day-indexed
  state without hand-writing curl invocations.

USAGE:
  simledger-cli accounts create --name alice
  simledger-cli accounts list
  simledger-cli products create --title widget --price 50 --stock 10
  simledger-cli products list --day 3
  simledger-cli deposit --account <id> --amount 100 --day 1
  simledger-cli purchase --account <id> --product <id> --day 2

FLAGS:
  --url      base URL of the API (default http://localhost:8080)
  --timeout  request timeout
  --day      simulated day, sent in the Simulated-Day header
*/
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
	day     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "simledger-cli",
		Short: "Simulated-day ledger CLI",
		Long:  `A command line interface for the simulated-day purchasing ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().IntVar(&day, "day", 0, "Simulated day (Simulated-Day header)")

	// Account commands
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var accountName string
	createAccountCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Run: func(cmd *cobra.Command, args []string) {
			do(http.MethodPost, "/accounts", map[string]any{"name": accountName})
		},
	}
	createAccountCmd.Flags().StringVar(&accountName, "name", "", "Account name")

	listAccountsCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Run: func(cmd *cobra.Command, args []string) {
			do(http.MethodGet, "/accounts", nil)
		},
	}

	getAccountCmd := &cobra.Command{
		Use:   "get <account-id>",
		Short: "Get one account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			do(http.MethodGet, "/accounts/"+args[0], nil)
		},
	}

	accountsCmd.AddCommand(createAccountCmd, listAccountsCmd, getAccountCmd)

	// Product commands
	productsCmd := &cobra.Command{
		Use:   "products",
		Short: "Product operations",
	}

	var title, description string
	var price float64
	var stock int
	createProductCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Run: func(cmd *cobra.Command, args []string) {
			do(http.MethodPost, "/products", map[string]any{
				"title":       title,
				"description": description,
				"price":       price,
				"stock":       stock,
			})
		},
	}
	createProductCmd.Flags().StringVar(&title, "title", "", "Product title")
	createProductCmd.Flags().StringVar(&description, "description", "", "Product description")
	createProductCmd.Flags().Float64Var(&price, "price", 0, "Product price")
	createProductCmd.Flags().IntVar(&stock, "stock", 0, "Total stock capacity")

	listProductsCmd := &cobra.Command{
		Use:   "list",
		Short: "List products with stock as of --day",
		Run: func(cmd *cobra.Command, args []string) {
			do(http.MethodGet, "/products", nil)
		},
	}

	getProductCmd := &cobra.Command{
		Use:   "get <product-id>",
		Short: "Get one product with stock as of --day",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			do(http.MethodGet, "/products/"+args[0], nil)
		},
	}

	productsCmd.AddCommand(createProductCmd, listProductsCmd, getProductCmd)

	// Deposit command
	var depositAccount string
	var amount float64
	depositCmd := &cobra.Command{
		Use:   "deposit",
		Short: "Register a deposit",
		Run: func(cmd *cobra.Command, args []string) {
			do(http.MethodPost, "/accounts/"+depositAccount+"/deposits", map[string]any{"amount": amount})
		},
	}
	depositCmd.Flags().StringVar(&depositAccount, "account", "", "Account ID")
	depositCmd.Flags().Float64Var(&amount, "amount", 0, "Deposit amount")

	// Purchase command
	var purchaseAccount, purchaseProduct string
	purchaseCmd := &cobra.Command{
		Use:   "purchase",
		Short: "Register a purchase",
		Run: func(cmd *cobra.Command, args []string) {
			do(http.MethodPost, "/accounts/"+purchaseAccount+"/purchases", map[string]any{"productId": purchaseProduct})
		},
	}
	purchaseCmd.Flags().StringVar(&purchaseAccount, "account", "", "Account ID")
	purchaseCmd.Flags().StringVar(&purchaseProduct, "product", "", "Product ID")

	rootCmd.AddCommand(accountsCmd, productsCmd, depositCmd, purchaseCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// do sends one request and prints the response body, pretty-printed when
// it is JSON. Statuses of 400 and above exit non-zero.
func do(method, path string, body any) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if day > 0 {
		req.Header.Set("Simulated-Day", strconv.Itoa(day))
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var pretty bytes.Buffer
	if json.Indent(&pretty, raw, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(raw))
	}

	if resp.StatusCode >= 400 {
		fmt.Printf("Request failed (Status: %d)\n", resp.StatusCode)
		os.Exit(1)
	}
}
