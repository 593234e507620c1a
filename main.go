package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/wfunc/mahjongtable/config"
	"github.com/wfunc/mahjongtable/feed"
	"github.com/wfunc/mahjongtable/layout"
	"github.com/wfunc/mahjongtable/logger"
	"github.com/wfunc/mahjongtable/monitor"
	"github.com/wfunc/mahjongtable/persistence"
	"github.com/wfunc/mahjongtable/render"
	"github.com/wfunc/mahjongtable/rpc"
	"github.com/wfunc/mahjongtable/scene"
	"github.com/wfunc/mahjongtable/services"
	"github.com/wfunc/mahjongtable/statesync"
	"github.com/wfunc/mahjongtable/ui"
)

// view: 连接状态服务 -> 收到 game_state_update 后建场
// feed: 本地开发用的状态服务
// layout: 输出牌墙与手牌的摆放

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mahjongtable",
	Short: "麻将桌 3D 场景布局",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		loaded = cfg
		logger.Init(cfg.Log.Level)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

var loaded *config.Config

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Follow the state feed and build the table scene",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runView(ctx, loaded)
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Serve a development state feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := feed.NewServer()
		errc := make(chan error, 1)
		go func() { errc <- srv.Start(loaded.Feed.Listen) }()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
			srv.Shutdown()
			return nil
		}
	},
}

var handFlag string

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print wall and hand placements as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		hand := loaded.Render.InitialHand
		if handFlag != "" {
			hand = strings.Split(handFlag, ",")
		}
		if hand == nil {
			hand = scene.DefaultHand
		}
		if len(hand) > layout.HandCapacity {
			return fmt.Errorf("hand holds at most %d tiles, got %d", layout.HandCapacity, len(hand))
		}
		out := struct {
			Walls []layout.Placement `json:"walls"`
			Hand  []layout.Placement `json:"hand"`
		}{
			Walls: layout.Walls(),
			Hand:  layout.Collect(layout.GenerateHand(hand)),
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "config.yaml or the directory holding it")
	layoutCmd.Flags().StringVar(&handFlag, "hand", "", "comma separated face labels, at most 14")
	rootCmd.AddCommand(viewCmd, feedCmd, layoutCmd)
}

func openDatabase(cfg config.DatabaseConfig) (persistence.Database, error) {
	pg := cfg.Postgres
	switch cfg.Driver {
	case config.DriverGorm:
		return persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case config.DriverSQL:
		return persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	default:
		return persistence.NewMemory(), nil
	}
}

func runView(ctx context.Context, cfg *config.Config) error {
	db, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Log.Infof("Session store: %s", cfg.Database.Driver)

	mon := monitor.NewMonitor("mahjongtable")
	if err := mon.StartServer(cfg.Monitor.Address); err != nil {
		return err
	}

	renderer := render.NewHeadless(cfg.Render.FrameInterval)
	defer renderer.Stop()

	controller := scene.NewController(renderer, scene.Options{
		InitialHand: cfg.Render.InitialHand,
		Shadow: render.ShadowQuality{
			MapSize:    cfg.Render.ShadowMapSize,
			BlurKernel: cfg.Render.ShadowBlur,
		},
	})

	tracker := persistence.NewSessionTracker(db, uuid.New().String(), cfg.Feed.Username)
	controller.SetObserver(scene.Observers{mon, tracker})

	rpcServer, err := rpc.NewServer(cfg.RPC.Address,
		rpc.NewSceneService(controller, services.NewSessionService(db)))
	if err != nil {
		return err
	}
	go rpcServer.Start()
	defer rpcServer.Stop()

	bridge := statesync.NewBridge(controller, ui.NewPresenter(),
		statesync.WithRecorder(mon),
		statesync.WithListener(tracker),
	)
	client := statesync.NewClient(statesync.ClientConfig{
		URL:       cfg.Feed.URL,
		Username:  cfg.Feed.Username,
		Heartbeat: cfg.Feed.Heartbeat,
	}, bridge)

	// 断线后重连，场景保持已建状态
	for {
		err := client.Run(ctx)
		if ctx.Err() != nil {
			logger.Log.Infof("Viewer stopped after %d frames: %+v", renderer.Frames(), controller.Stats())
			return nil
		}
		logger.Log.Warnf("State feed disconnected: %v", err)
		select {
		case <-time.After(2 * time.Second):
		case <-ctx.Done():
			return nil
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Log.Errorf("error happen: %v", err)
		os.Exit(1)
	}
}
