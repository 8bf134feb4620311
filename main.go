package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"

	builderApp "pagebuilder/internal/app"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "pagebuilder",
		Short:        "Visual page builder",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDesktop()
		},
	}
	root.AddCommand(mcpCommand(), exportCommand(), importCommand())
	return root
}

func mcpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the builder as an MCP server on stdin/stdout",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			builderApp.ServeMCP()
		},
	}
}

func exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every stored page to a directory as page files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := builderApp.ExportPages(cmd.Context(), args[0])
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return err
		},
	}
}

func importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Validate and store page files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return builderApp.ImportPageFiles(cmd.Context(), args)
		},
	}
}

func runDesktop() error {
	app := builderApp.New()

	// macOS needs an Edit menu for Cmd+C/V/X/A to reach the WebView
	appMenu := menu.NewMenu()
	appMenu.Append(menu.EditMenu())

	return wails.Run(&options.App{
		Title:     "Page Builder",
		Width:     1440,
		Height:    900,
		MinWidth:  800,
		MinHeight: 600,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 15, G: 15, B: 20, A: 1},
		Menu:             appMenu,
		OnStartup:        app.Startup,
		OnShutdown:       app.Shutdown,
		Bind: []interface{}{
			app,
		},
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: true,
				HideTitle:                  true,
				HideTitleBar:               false,
				FullSizeContent:            true,
				UseToolbar:                 true,
				HideToolbarSeparator:       true,
			},
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			About: &mac.AboutInfo{
				Title:   "Page Builder",
				Message: "Block-based page editor with a component library",
			},
		},
	})
}
