package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/drm"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var flagTargetKID string

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Key material helpers",
}

var keysNormalizeCmd = &cobra.Command{
	Use:   "normalize VALUE",
	Short: "Print the canonical hex of a key or key id (uuid, hex or base64)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		normalized, ok := drm.NormalizeKeyID(args[0])
		if !ok {
			return errors.Wrapf(util.ErrInvalidKeyData, "%q is not 16 bytes of uuid, hex or base64", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), normalized)
		return nil
	},
}

var keysExtractCmd = &cobra.Command{
	Use:   "extract [RESPONSE]",
	Short: "Pick the content key out of a key exchange response (stdin if omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw string
		if len(args) == 1 {
			raw = args[0]
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			raw = string(data)
		}
		normalizer := &drm.KeyNormalizer{}
		key, ok := normalizer.NormalizeDecryptionKey(raw, flagTargetKID)
		if !ok {
			return errors.Wrap(util.ErrInvalidKeyData, "no usable key in response")
		}
		if flagJSON {
			return printJSON(cmd, key)
		}
		if key.KeyID != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\n", key.KeyID, key.Key)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), key.Key)
		}
		return nil
	},
}

func init() {
	keysExtractCmd.Flags().StringVar(&flagTargetKID, "kid", "", "Key id the key must be bound to")
	keysCmd.AddCommand(keysNormalizeCmd)
	keysCmd.AddCommand(keysExtractCmd)
}
