package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/shiftboard/internal/notification"
	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification commands",
}

var notifyData map[string]string

var notifyTestCmd = &cobra.Command{
	Use:   "test <template> <recipient>",
	Short: "Send one notification through the configured gateway",
	Long:  `Send a single templated message to an email address or phone number, bypassing the queue, to check the notification settings.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log := setupLogger(cfg)

		data := make(map[string]interface{}, len(notifyData)+1)
		for k, v := range notifyData {
			data[k] = v
		}
		data["source"] = "cli-command"

		msg := notification.Message{
			Channel:   notification.ChannelFor(args[1]),
			Template:  args[0],
			Recipient: args[1],
			Data:      data,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		log.Info("sending test notification", "template", msg.Template, "channel", msg.Channel, "driver", cfg.Notification.Driver)
		if err := notification.Send(ctx, newSender(cfg.Notification, log), msg); err != nil {
			return fmt.Errorf("failed to send notification: %w", err)
		}
		fmt.Println("notification sent")
		return nil
	},
}

func init() {
	notifyTestCmd.Flags().StringToStringVar(&notifyData, "data", map[string]string{"scheduleName": "Test"}, "template data as key=value pairs")

	notifyCmd.AddCommand(notifyTestCmd)
}
