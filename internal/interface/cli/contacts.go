package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mirrordesk/mirrordesk/internal/domain/model/contact"
	"github.com/mirrordesk/mirrordesk/internal/domain/remote"
)

func newContactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Work with CRM contacts",
		RunE:  func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newContactsListCmd())
	cmd.AddCommand(newContactsCreateCmd())
	return cmd
}

func newContactsListCmd() *cobra.Command {
	var filter string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(globalConfig)
			if err != nil {
				return err
			}

			q := remote.Query{PageSize: globalConfig.PageSize(), Expression: filter}
			if err := rt.contacts.List(cmd.Context(), q); err != nil {
				return fmt.Errorf("list contacts: %w", err)
			}

			items := rt.contacts.Items()
			if jsonOutput {
				b, err := json.MarshalIndent(items, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(b))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tCOMPANY")
			for _, c := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", shortID(c.ID), c.Name, c.Email, c.Company)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", `Client-side filter expression, e.g. 'Company == "Acme"'`)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output contacts as JSON")
	return cmd
}

func newContactsCreateCmd() *cobra.Command {
	var name, email, company string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(globalConfig)
			if err != nil {
				return err
			}

			payload, err := contact.New(name, email)
			if err != nil {
				return err
			}
			payload.Company = company

			created, err := rt.contacts.Create(cmd.Context(), payload)
			if err != nil {
				return fmt.Errorf("create contact: %w", err)
			}
			fmt.Printf("Created contact %s (%s)\n", created.ID, created.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Contact name (required)")
	cmd.Flags().StringVar(&email, "email", "", "Contact email")
	cmd.Flags().StringVar(&company, "company", "", "Company name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
