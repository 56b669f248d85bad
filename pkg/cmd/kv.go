package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Flapjacck/moxbox/pkg/configs"
	kv "github.com/Flapjacck/moxbox/pkg/internal/storage/kv"
)

var (
	kvCmd = &cobra.Command{
		Use:     "kv",
		Short:   "Key-Value store related commands",
		Aliases: []string{"keyvalue"},
	}

	kvListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list all registered kv types",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered kv types:")
			for _, t := range kv.GetRegisteredKVTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(t))
			}
		},
	}

	kvPingCmd = &cobra.Command{
		Use:   "ping",
		Short: "write and delete a probe key against the configured kv backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			ctx := cmd.Context()

			client, err := kv.NewKVClient(ctx)
			if err != nil {
				return fmt.Errorf("connect kv backend: %w", err)
			}
			defer func() { _ = client.Close() }()

			const probeKey = "moxbox.cli.ping"

			if err := client.Set(ctx, probeKey, []byte("pong"), 10*time.Second); err != nil {
				return fmt.Errorf("probe write failed: %w", err)
			}

			if err := client.Delete(ctx, probeKey); err != nil {
				return fmt.Errorf("probe delete failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "kv backend %q is reachable\n", configs.GetConfig().KV.Type)

			return nil
		},
	}
)

// registerKVCommands 注册 KV 相关命令.
func registerKVCommands() {
	rootCmd.AddCommand(kvCmd)
	kvCmd.AddCommand(kvListCmd)
	kvCmd.AddCommand(kvPingCmd)
}
