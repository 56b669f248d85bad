package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/spf13/cobra"

	"github.com/Flapjacck/moxbox/pkg/configs"
	mq "github.com/Flapjacck/moxbox/pkg/internal/storage/mq"
	"github.com/Flapjacck/moxbox/pkg/queue"
)

var (
	mqCmd = &cobra.Command{
		Use:     "mq",
		Short:   "Message queue related commands",
		Aliases: []string{"messagequeue"},
	}

	mqListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list all registered mq types",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered mq types:")
			for _, t := range mq.GetRegisteredMQTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(t))
			}
		},
	}

	mqTopicsCmd = &cobra.Command{
		Use:   "topics",
		Short: "list the event topics published by the service",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "File lifecycle topics:")
			for _, t := range queue.FileTopics {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+t)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Folder topics:")
			for _, t := range queue.FolderTopics {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+t)
			}
		},
	}

	// mqTailCmd 订阅事件主题并滚动打印，调试外部消费脚本时即时
	// 观察服务发出的事件.
	mqTailCmd = &cobra.Command{
		Use:   "tail [topic...]",
		Short: "subscribe to event topics and print messages as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client, err := mq.New(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			topics := args
			if len(topics) == 0 {
				topics = append(append([]string{}, queue.FileTopics...), queue.FolderTopics...)
			}

			var wg sync.WaitGroup

			for _, topic := range topics {
				ch, err := client.Subscribe(ctx, topic)
				if err != nil {
					return fmt.Errorf("subscribe %s: %w", topic, err)
				}

				wg.Add(1)

				go func(topic string, ch <-chan *message.Message) {
					defer wg.Done()

					for msg := range ch {
						fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s %s\n",
							topic, msg.Metadata.Get(queue.MetaOccurredAt), msg.Payload)
						msg.Ack()
					}
				}(topic, ch)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "listening on %d topic(s), ctrl-c to stop\n", len(topics))

			<-ctx.Done()
			wg.Wait()

			return nil
		},
	}
)

// registerMQCommands 注册 MQ 相关命令.
func registerMQCommands() {
	rootCmd.AddCommand(mqCmd)
	mqCmd.AddCommand(mqListCmd)
	mqCmd.AddCommand(mqTopicsCmd)
	mqCmd.AddCommand(mqTailCmd)
}
