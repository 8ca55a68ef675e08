package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/getwhereabouts/whereabouts/internal/profile"
	"github.com/getwhereabouts/whereabouts/internal/version"
	"github.com/getwhereabouts/whereabouts/server"
	"github.com/getwhereabouts/whereabouts/store"
	"github.com/getwhereabouts/whereabouts/store/db"
)

const greetingBanner = `whereabouts - who is in the office today?`

var rootCmd = &cobra.Command{
	Use:   "whereabouts",
	Short: "A slash-command bot that tracks WFH/OOO statuses",
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:     viper.GetString("mode"),
			Addr:     viper.GetString("addr"),
			Port:     viper.GetInt("port"),
			Data:     viper.GetString("data"),
			Driver:   viper.GetString("driver"),
			DSN:      viper.GetString("dsn"),
			Timezone: viper.GetString("timezone"),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", "err", err)
			os.Exit(1)
		}
		instanceProfile.Version = version.GetCurrentVersion(instanceProfile.Mode)

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			slog.Error("failed to create db driver", "err", err)
			os.Exit(1)
		}
		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database", "err", err)
			os.Exit(1)
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			slog.Error("failed to create server", "err", err)
			os.Exit(1)
		}

		fmt.Println(greetingBanner)
		if err := s.Start(ctx); err != nil {
			slog.Error("server exited with error", "err", err)
		}
		s.Shutdown()
	},
}

func init() {
	rootCmd.PersistentFlags().String("mode", "dev", `mode of the server: "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "binding address for the server")
	rootCmd.PersistentFlags().Int("port", 8230, "binding port for the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver: "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("timezone", "", "IANA organizational timezone")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn", "timezone"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8230)
	viper.SetEnvPrefix("whereabouts")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("failed to run command", "err", err)
		os.Exit(1)
	}
}
