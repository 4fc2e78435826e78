/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mikeb26/fidecompare/fide"
	"github.com/mikeb26/fidecompare/internal"

	_ "embed"
)

type TopLevelCommand string

const (
	FideCmd TopLevelCommand = "fide"
)

type CmdHandler func(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse

// bot answers Discord interactions over HTTP. It never opens a gateway
// connection; the session is only used to register the slash command.
type bot struct {
	provider  Provider
	pubKey    ed25519.PublicKey
	shareBase string

	topLevelCmdHdlrs map[TopLevelCommand]CmdHandler
}

func newBot(provider Provider, pubKey ed25519.PublicKey, shareBase string) *bot {
	b := &bot{provider: provider, pubKey: pubKey, shareBase: shareBase}
	b.topLevelCmdHdlrs = map[TopLevelCommand]CmdHandler{
		FideCmd: b.fideCmdHandler,
	}
	return b
}

func (b *bot) interactionHandler(w http.ResponseWriter, r *http.Request) {
	if !discordgo.VerifyInteraction(r, b.pubKey) {
		log.Printf("discordbot.int: failed to verify")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("discordbot.int: failed to read request body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var inter discordgo.Interaction
	if err := inter.UnmarshalJSON(body); err != nil {
		log.Printf("discordbot.int: failed to unmarshal interaction: err:%v body:%v",
			err, string(body))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	resp := &discordgo.InteractionResponse{}
	switch inter.Type {
	case discordgo.InteractionPing:
		resp.Type = discordgo.InteractionResponsePong
	case discordgo.InteractionApplicationCommand:
		name := inter.ApplicationCommandData().Name
		hdlr, ok := b.topLevelCmdHdlrs[TopLevelCommand(name)]
		if !ok {
			resp.Type = discordgo.InteractionResponseChannelMessageWithSource
			resp.Data = &discordgo.InteractionResponseData{
				Content: fmt.Sprintf("unknown command '%v'", name),
				Flags:   discordgo.MessageFlagsEphemeral,
			}
		} else {
			resp = hdlr(r.Context(), &inter)
		}
	default:
		log.Printf("discordbot.int: unimplemented interaction type %v", inter.Type)
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	rawResp, err := json.Marshal(resp)
	if err != nil {
		log.Printf("discordbot.int: failed to marshal resp: err:%v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(rawResp); err != nil {
		log.Printf("discordbot.int: failed to write resp: err:%v", err)
	}
}

func (b *bot) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Post("/DiscordBot/Interaction", b.interactionHandler)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	return r
}

//go:embed lastupdate.hash
var lastCmdUpdateHash string

func cmdHash(cmd *discordgo.ApplicationCommand) string {
	cmdJson, err := json.Marshal(cmd)
	if err != nil {
		log.Fatalf("discordbot.reg: failed to marshal cmd: %v", err)
	}
	hash := sha256.Sum256(cmdJson)
	return hex.EncodeToString(hash[:])
}

func shouldUpdateCmdRegistration(cmd *discordgo.ApplicationCommand) bool {
	hexString := cmdHash(cmd)
	shouldUpdate := hexString != strings.TrimSpace(lastCmdUpdateHash)
	if shouldUpdate {
		log.Printf("discordbot.reg: updating cmd reg; please update lastupdate.hash to %v",
			hexString)
	}
	return shouldUpdate
}

func registerSlashCommands(session *discordgo.Session, cfg internal.DiscordConfig) {
	fideCmd := fideCommand()

	if cfg.CommandID == "" {
		cmd, err := session.ApplicationCommandCreate(cfg.AppID, "", fideCmd)
		if err != nil {
			log.Printf("discordbot.reg: failed to register %v: %v", fideCmd.Name, err)
			return
		}
		log.Printf("discordbot.reg: registered %v(cmdID:%v)", cmd.Name, cmd.ID)
	} else if shouldUpdateCmdRegistration(fideCmd) {
		cmd, err := session.ApplicationCommandEdit(cfg.AppID, "", cfg.CommandID, fideCmd)
		if err != nil {
			log.Printf("discordbot.reg: failed to update %v: %v", fideCmd.Name, err)
			return
		}
		log.Printf("discordbot.reg: updated %v(cmdID:%v)", cmd.Name, cmd.ID)
	}
}

func main() {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))

	configPath := flag.String("config", "", "Path to a config file")
	addr := flag.String("addr", ":8080", "Listen address")
	flag.Parse()

	cfg, err := internal.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("discordbot.main: failed to load config: %v", err)
	}
	pubKeyBytes, err := hex.DecodeString(cfg.Discord.PublicKey)
	if err != nil || len(pubKeyBytes) != ed25519.PublicKeySize {
		log.Fatalf("discordbot.main: invalid discord.public_key: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Discord.Token != "" {
		session, err := discordgo.New("Bot " + cfg.Discord.Token)
		if err != nil {
			log.Fatalf("discordbot.main: failed to initialize discord client: %v", err)
		}
		go registerSlashCommands(session, cfg.Discord)
	} else {
		log.Printf("discordbot.main: no discord.token; skipping command registration")
	}

	client := fide.NewClient(ctx, fide.ConfigFrom(cfg))
	b := newBot(client, ed25519.PublicKey(pubKeyBytes), cfg.ShareBaseURL)

	server := &http.Server{
		Addr:         *addr,
		Handler:      b.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	log.Printf("discordbot.main: starting server on %v%v", hostname, *addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("discordbot.main: Serve failed: %v", err)
	}
	log.Printf("discordbot.main: exiting")
}
