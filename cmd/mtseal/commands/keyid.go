package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func keyIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keyid",
		Short: "Print the auth key id of the stored secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadContext()
			if err != nil {
				return err
			}
			fmt.Printf("%016x\n", sc.AuthKeyID())
			return nil
		},
	}
}
