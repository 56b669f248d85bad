package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/Flapjacck/moxbox/pkg/configs"
	"github.com/Flapjacck/moxbox/pkg/rule"
)

var (
	// config 子命令.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "config subcommands",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configs.InitConfig(configPath)
		},
	}

	// 打印当前使用的配置文件路径.
	pathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the path of the current config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := configs.GetViper()
			if v == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "config not initialized")

				return nil
			}

			if used := v.ConfigFileUsed(); used != "" {
				fmt.Fprintln(cmd.OutOrStdout(), used)

				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "no config file used (defaults and env only)")

			return nil
		},
	}

	// 以 JSON 打印生效配置，密码类字段不回显.
	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "print the effective config values",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := configs.GetViper()
			if v == nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "config not initialized")

				return nil
			}

			if debug {
				v.Debug()
			}

			settings := v.AllSettings()
			redactSecrets(settings)

			b, err := sonic.ConfigStandard.MarshalIndent(settings, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}

	// 校验生效配置，失败时逐条列出.
	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "validate the effective config values",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := rule.ValidateStruct(configs.GetConfig())
			if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "config ok")

				return nil
			}

			fields := rule.Errors(err)
			for _, name := range slices.Sorted(maps.Keys(fields)) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", name, fields[name])
			}

			return fmt.Errorf("%d invalid config field(s)", len(fields))
		},
	}

	// 把默认配置写成起步配置文件，已存在时拒绝覆盖.
	initCmd = &cobra.Command{
		Use:   "init [file]",
		Short: "write a starter config file with all defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "config.yaml"
			if len(args) == 1 {
				target = args[0]
			}

			v := configs.GetViper()
			if v == nil {
				return fmt.Errorf("config not initialized")
			}

			if err := v.SafeWriteConfigAs(target); err != nil {
				return fmt.Errorf("write starter config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "wrote", target)

			return nil
		},
	}
)

// redactSecrets 原地把键名含 password 或 secret 的字符串值换成占位符.
func redactSecrets(m map[string]any) {
	for key, val := range m {
		if sub, ok := val.(map[string]any); ok {
			redactSecrets(sub)
			continue
		}

		lower := strings.ToLower(key)
		if !strings.Contains(lower, "password") && !strings.Contains(lower, "secret") {
			continue
		}

		if s, ok := val.(string); ok && s != "" {
			m[key] = "******"
		}
	}
}

// registerConfigsCommands 注册 CLI 子命令.
func registerConfigsCommands() {
	configCmd.AddCommand(pathCmd)
	configCmd.AddCommand(debugCmd)
	configCmd.AddCommand(validateCmd)
	configCmd.AddCommand(initCmd)

	rootCmd.AddCommand(configCmd)
}
