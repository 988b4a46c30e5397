package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"fridgechef/internal/api"
	"fridgechef/internal/pkg/common"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fridgechef",
		Short:         "Turn fridge ingredients into saved, shared and planned recipes",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		newServeCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newRecipesCmd(),
		newPantryCmd(),
		newPlanCmd(),
		newGenerateCmd(),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// runServe 啟動頁面伺服器，收到中斷信號後優雅關閉
func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, "")
	if err != nil {
		return err
	}
	defer a.Close()

	// 設置路由
	router, cleanup, err := api.SetupRouter(a.cfg, api.Dependencies{
		Sync:    a.sync,
		Recipes: a.recipes,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		return err
	}
	defer cleanup()

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.Port)),
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", a.cfg.App.Version),
			zap.String("env", a.cfg.App.Env),
			zap.String("host", a.cfg.Server.Host),
			zap.Int("port", a.cfg.Server.Port),
			zap.String("public_url", a.cfg.PublicURL),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server", zap.Error(err))
			errCh <- err
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return err
	}

	common.LogInfo("Server exited")
	return nil
}
