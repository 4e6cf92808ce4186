// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taibuivan/stockroom/internal/client"
)

func newProductsCmd(state *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"p"},
		Short:   "Manage the product catalog (sign-in required)",
	}

	cmd.AddCommand(
		newProductsListCmd(state),
		newProductsGetCmd(state),
		newProductsCreateCmd(state),
		newProductsUpdateCmd(state),
		newProductsDeleteCmd(state),
	)
	return cmd
}

func newProductsListCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := state.navigate(cmd, "/"); err != nil {
				return err
			}
			products, err := state.api.ListProducts(cmd.Context())
			if err != nil {
				return err
			}
			return printProducts(cmd.OutOrStdout(), products...)
		},
	}
}

func newProductsGetCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			route, err := state.navigate(cmd, "/view/"+args[0])
			if err != nil {
				return err
			}
			product, err := state.api.GetProduct(cmd.Context(), route.ID)
			if err != nil {
				return err
			}
			return printProducts(cmd.OutOrStdout(), *product)
		},
	}
}

type productFlags struct {
	name  string
	price float64
}

func (flags *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flags.name, "name", "", "product name")
	cmd.Flags().Float64Var(&flags.price, "price", 0, "product price")
	_ = cmd.MarkFlagRequired("name")
}

func (flags *productFlags) input() client.ProductInput {
	return client.ProductInput{Name: flags.name, Price: flags.price}
}

func newProductsCreateCmd(state *app) *cobra.Command {
	flags := &productFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := state.navigate(cmd, "/create"); err != nil {
				return err
			}
			product, err := state.api.CreateProduct(cmd.Context(), flags.input())
			if err != nil {
				return err
			}
			return printProducts(cmd.OutOrStdout(), *product)
		},
	}
	flags.register(cmd)
	return cmd
}

func newProductsUpdateCmd(state *app) *cobra.Command {
	flags := &productFlags{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a product's name and price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			route, err := state.navigate(cmd, "/edit/"+args[0])
			if err != nil {
				return err
			}
			product, err := state.api.UpdateProduct(cmd.Context(), route.ID, flags.input())
			if err != nil {
				return err
			}
			return printProducts(cmd.OutOrStdout(), *product)
		},
	}
	flags.register(cmd)
	return cmd
}

func newProductsDeleteCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			route, err := state.navigate(cmd, "/edit/"+args[0])
			if err != nil {
				return err
			}
			if err := state.api.DeleteProduct(cmd.Context(), route.ID); err != nil {
				return err
			}
			cmd.Printf("Deleted %s\n", route.ID)
			return nil
		},
	}
}

func printProducts(out io.Writer, products ...client.Product) error {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tNAME\tPRICE")
	for _, product := range products {
		fmt.Fprintf(writer, "%s\t%s\t%.2f\n", product.ID, product.Name, product.Price)
	}
	return writer.Flush()
}
