package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/atlasmaps/atlas/mods"
	"github.com/atlasmaps/atlas/mods/entity"
	"github.com/atlasmaps/atlas/mods/logging"
	"github.com/atlasmaps/atlas/mods/server"
	"github.com/atlasmaps/atlas/mods/util"
	"github.com/atlasmaps/atlas/mods/viz"
)

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("atlasd"),
		kong.HelpOptions{NoAppSummary: false, Compact: true, FlagsLast: true},
		kong.UsageOnError(),
	)
	if err := ctx.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "ERR", err.Error())
		os.Exit(1)
	}
}

type CLI struct {
	Serve     ServeCmd     `cmd:"" default:"1" help:"start the atlas server"`
	GenConfig GenConfigCmd `cmd:"" name:"gen-config" help:"print the default configuration"`
	Version   VersionCmd   `cmd:"" help:"show version"`
}

type ServeCmd struct {
	Config string   `name:"config" short:"c" help:"path to the configuration file"`
	Listen []string `name:"listen" help:"http listen address, repeatable"`
}

func (cmd *ServeCmd) Run() error {
	// bootstrap logging until the configuration is loaded
	logging.Configure(&logging.PresetConfigStdout)
	conf, err := LoadConfig(cmd.Config)
	if err != nil {
		return err
	}
	if len(cmd.Listen) > 0 {
		conf.Http.Listeners = cmd.Listen
	}

	logging.Configure(&conf.Log)
	log := logging.GetLog("atlasd")
	log.Infof("atlas %s %s", mods.VersionString(), mods.BuildCompiler())
	startTime := time.Now()

	entities := entity.NewManager()
	for _, path := range conf.Entities.GeoJSON {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("entity file %s, %s", path, err.Error())
		}
		ids, err := entities.ImportGeoJSON(content)
		if err != nil {
			return fmt.Errorf("entity file %s, %s", path, err.Error())
		}
		log.Infof("imported %s entities from %s", util.HumanizeNumber(len(ids)), path)
	}

	visuals := viz.NewManager()

	svr, err := server.NewHttp(entities, visuals,
		server.WithHttpListenAddress(conf.Http.Listeners...),
		server.WithHttpDebugMode(conf.Http.Debug, conf.Http.DebugLatencyFilter),
		server.WithHttpMapSize(conf.Map.Width, conf.Map.Height),
		server.WithHttpTileTemplate(conf.Map.Tiles),
	)
	if err != nil {
		return err
	}
	if err := svr.Start(); err != nil {
		return err
	}
	log.Infof("http listening %s", svr.AdvertiseAddress())
	util.AddShutdownHook(func() { svr.Stop() })

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infof("shutting down, uptime %s", util.HumanizeDuration(time.Since(startTime)))
	util.RunShutdownHooks()
	return nil
}

type GenConfigCmd struct{}

func (cmd *GenConfigCmd) Run() error {
	fmt.Println(string(DefaultConfigYAML))
	return nil
}

type VersionCmd struct{}

func (cmd *VersionCmd) Run() error {
	fmt.Fprintf(os.Stdout, "atlasd %s\n", mods.VersionString())
	return nil
}
