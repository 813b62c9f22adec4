package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/josh-kwaku/cryptogate/internal/alias"
)

func aliasCmd() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Convert between payment ids and public aliases",
	}
	cmd.PersistentFlags().StringVar(&secret, "secret", os.Getenv("ALIAS_SECRET"), "alias secret (defaults to $ALIAS_SECRET)")

	cmd.AddCommand(&cobra.Command{
		Use:   "encode [payment-id]",
		Short: "Print the alias of a payment id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := alias.NewCodec(secret)
			if err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid payment id: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), codec.Encode(id))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "decode [alias]",
		Short: "Print the payment id behind an alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := alias.NewCodec(secret)
			if err != nil {
				return err
			}
			id, err := codec.Decode(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	})

	return cmd
}
