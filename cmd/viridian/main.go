package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	mcnet "github.com/Tnze/go-mc/net"
	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/cloudflare/tableflip"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	viridian "github.com/viridianmc/viridian"
	"github.com/viridianmc/viridian/config"
	"github.com/viridianmc/viridian/network"
	"github.com/viridianmc/viridian/status"
)

const defaultCfgPath = "/etc/viridian/viridian.json"

// pingProtocol is the protocol version the ping subcommand announces.
const pingProtocol = 755

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		log.Fatal().Msg("expected a subcommand: run, reload or ping")
	}

	flags := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	cfgPath := flags.String("config", defaultCfgPath, "`Path` to the config file")
	addr := flags.String("addr", "localhost:25565", "`Address` to ping")
	flags.Parse(os.Args[2:])

	switch os.Args[1] {
	case "run":
		runServer(*cfgPath)
	case "reload":
		if err := callReloadAPI(*cfgPath); err != nil {
			log.Fatal().Err(err).Msg("reload failed")
		}
		log.Info().Msg("finished reloading")
	case "ping":
		if err := pingServer(*addr); err != nil {
			log.Fatal().Err(err).Msg("ping failed")
		}
	default:
		log.Fatal().Str("subcommand", os.Args[1]).Msg("unknown subcommand")
	}
}

func runServer(cfgPath string) {
	readConfig := config.NewFileReader(cfgPath)
	cfg, err := readConfig()
	if err != nil {
		log.Fatal().Err(err).Str("path", cfgPath).Msg("could not read config file")
	}

	var listen network.ListenFunc
	var upg *tableflip.Upgrader
	if cfg.EnableHotSwap {
		upg, err = tableflip.New(tableflip.Options{
			PIDFile: cfg.PidFile,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("could not create upgrader")
		}
		defer upg.Stop()

		go func() {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGHUP)
			for range sig {
				if err := upg.Upgrade(); err != nil {
					log.Error().Err(err).Msg("upgrade failed")
				}
			}
		}()

		listen = func(addr string) (net.Listener, error) {
			return upg.Listen("tcp", addr)
		}
	}

	server, err := viridian.NewServer(
		readConfig,
		viridian.NewStaticResolver(cfg.Status),
		status.DefaultFaviconLoader(),
		viridian.NewLogTracker(log.Logger),
		listen,
		log.Logger,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create server")
	}
	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("could not start server")
	}

	consoleDone := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if server.ProcessCommand(scanner.Text()) {
				close(consoleDone)
				return
			}
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	if upg != nil {
		if err := upg.Ready(); err != nil {
			log.Fatal().Err(err).Msg("upgrader not ready")
		}
		select {
		case <-upg.Exit():
			log.Info().Msg("upgrade in process, shutting down")
		case <-sig:
		case <-consoleDone:
		}
	} else {
		select {
		case <-sig:
		case <-consoleDone:
		}
	}

	if err := server.Stop(); err != nil {
		log.Error().Err(err).Msg("errors during shutdown")
	}
}

func callReloadAPI(cfgPath string) error {
	cfg, err := config.ReadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("read config file at %q: %w", cfgPath, err)
	}

	url := fmt.Sprintf("http://%s/reload", cfg.APIBind)
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reload returned status %v", resp.StatusCode)
	}
	return nil
}

// pingServer runs a modern status query against addr and prints the
// raw response.
func pingServer(addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return err
	}

	conn, err := mcnet.DialMC(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.WritePacket(pk.Marshal(
		0x00,
		pk.VarInt(pingProtocol),
		pk.String(host),
		pk.UnsignedShort(port),
		pk.VarInt(1),
	)); err != nil {
		return err
	}
	if err := conn.WritePacket(pk.Marshal(0x00)); err != nil {
		return err
	}

	response, err := conn.ReadPacket()
	if err != nil {
		return err
	}
	var payload pk.String
	if err := response.Scan(&payload); err != nil {
		return err
	}
	fmt.Println(string(payload))

	begin := time.Now()
	if err := conn.WritePacket(pk.Marshal(0x01, pk.Long(begin.UnixNano()/1e6))); err != nil {
		return err
	}
	if _, err := conn.ReadPacket(); err != nil {
		return err
	}
	fmt.Printf("latency: %v\n", time.Since(begin))
	return nil
}
