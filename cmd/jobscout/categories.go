package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the configured search categories and their queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			for _, cat := range cfg.Categories {
				fmt.Printf("%s: %s\n", cat.Name, cat.Description)
				for _, q := range cat.Queries {
					fmt.Printf("    %s\n", q)
				}
			}
			return nil
		},
	}
}
