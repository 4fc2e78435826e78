/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mikeb26/fidecompare/compare"
	"github.com/mikeb26/fidecompare/ratings"
	"github.com/mikeb26/fidecompare/web"
)

// Provider is what the bot needs from the rating provider client.
type Provider = web.Provider

type FideSubCommand string

const (
	FideHelpCmd    FideSubCommand = "help"
	FideSearchCmd  FideSubCommand = "search"
	FidePeakCmd    FideSubCommand = "peak"
	FideCompareCmd FideSubCommand = "compare"
	FideShareCmd   FideSubCommand = "share"
)

const maxSearchRows = 10

func (b *bot) subCmdHdlrs() map[FideSubCommand]CmdHandler {
	return map[FideSubCommand]CmdHandler{
		FideHelpCmd:    b.fideHelpCmdHandler,
		FideSearchCmd:  b.fideSearchCmdHandler,
		FidePeakCmd:    b.fidePeakCmdHandler,
		FideCompareCmd: b.fideCompareCmdHandler,
		FideShareCmd:   b.fideShareCmdHandler,
	}
}

func broadcastOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        "broadcast",
		Description: "Share with the rest of the channel instead of only to you (default is false)",
		Required:    false,
	}
}

func typeOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "type",
		Description: "Rating type (default is standard)",
		Required:    false,
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "standard", Value: "standard"},
			{Name: "rapid", Value: "rapid"},
			{Name: "blitz", Value: "blitz"},
		},
	}
}

func idsOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "ids",
		Description: "Comma separated FIDE ids",
		Required:    true,
	}
}

func fideCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        string(FideCmd),
		Description: "FIDE rating comparison; try /fide help to start",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(FideHelpCmd),
				Description: "Show usage for fide",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(FideSearchCmd),
				Description: "Search FIDE players by name or id",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "name",
						Description: "Name or FIDE id",
						Required:    true,
					},
					broadcastOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(FidePeakCmd),
				Description: "Show peak and latest ratings",
				Options:     []*discordgo.ApplicationCommandOption{idsOption(), typeOption(), broadcastOption()},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(FideCompareCmd),
				Description: "Show head-to-head results between two players",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "id1",
						Description: "FIDE id of the first player",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "id2",
						Description: "FIDE id of the second player",
						Required:    true,
					},
					typeOption(),
					broadcastOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(FideShareCmd),
				Description: "Link to the comparison dashboard",
				Options:     []*discordgo.ApplicationCommandOption{idsOption(), broadcastOption()},
			},
		},
	}
}

func (b *bot) fideCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	data := inter.ApplicationCommandData()
	hdlr := b.fideHelpCmdHandler
	if len(data.Options) > 0 {
		if h, ok := b.subCmdHdlrs()[FideSubCommand(data.Options[0].Name)]; ok {
			hdlr = h
		}
	}
	return hdlr(ctx, inter)
}

// subOptions collects the string options of the invoked sub command plus
// its broadcast flag.
func subOptions(inter *discordgo.Interaction) (map[string]string, bool) {
	opts := make(map[string]string)
	broadcast := false
	data := inter.ApplicationCommandData()
	if len(data.Options) == 0 {
		return opts, broadcast
	}
	for _, opt := range data.Options[0].Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionBoolean:
			if opt.Name == "broadcast" {
				broadcast = opt.BoolValue()
			}
		case discordgo.ApplicationCommandOptionString:
			opts[opt.Name] = strings.TrimSpace(opt.StringValue())
		}
	}
	return opts, broadcast
}

func newResponse() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}
}

func finish(resp *discordgo.InteractionResponse, broadcast bool) *discordgo.InteractionResponse {
	if broadcast {
		resp.Data.Flags = 0
	}
	return resp
}

//go:embed help.md
var helpText string

func (b *bot) fideHelpCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	resp.Data.Content = truncateContent(helpText)
	return resp
}

func (b *bot) fideSearchCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subOptions(inter)
	name := opts["name"]
	if name == "" {
		resp.Data.Content = "Please provide a name to search for."
		log.Printf("discordbot.search: %v", resp.Data.Content)
		return resp
	}

	players, err := b.provider.Search(ctx, name)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error searching for %v: %v", name, err)
		log.Printf("discordbot.search: %v", resp.Data.Content)
		return resp
	}
	if len(players) == 0 {
		resp.Data.Content = fmt.Sprintf("No players found for %v.", name)
		return finish(resp, broadcast)
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"ID", "Name", "Fed", "Std"})
	for i, p := range players {
		if i == maxSearchRows {
			tbl.AppendFooter(table.Row{"", fmt.Sprintf("%d more", len(players)-maxSearchRows)})
			break
		}
		tbl.AppendRow(table.Row{p.ID, p.Name, p.Federation, p.Standard})
	}
	resp.Data.Content = codeBlock(tbl.Render())
	return finish(resp, broadcast)
}

func (b *bot) fidePeakCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subOptions(inter)
	rt, err := ratings.ParseRatingType(opts["type"])
	if err != nil {
		resp.Data.Content = err.Error()
		return resp
	}
	if len(compare.ParseIDs("id="+opts["ids"])) == 0 {
		resp.Data.Content = "Please provide at least one FIDE id."
		log.Printf("discordbot.peak: %v", resp.Data.Content)
		return resp
	}

	list := compare.NewList(compare.DefaultPalette(), nil)
	if err := list.Hydrate(ctx, "id="+opts["ids"], compare.Player{}, b.provider); err != nil {
		resp.Data.Content = fmt.Sprintf("Error resolving players: %v", err)
		log.Printf("discordbot.peak: %v", resp.Data.Content)
		return resp
	}
	ld := &compare.Loader{History: b.provider, Logf: log.Printf}
	d := compare.BuildDashboard(list.Players(), ld.LoadHistories(ctx, list.Players()), nil, rt)

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%v peak ratings**\n", rt.Label())
	for _, s := range d.Series {
		switch {
		case s.Err != "":
			fmt.Fprintf(&sb, "- %v: history unavailable\n", s.Player.Name)
		case s.Peak == nil:
			fmt.Fprintf(&sb, "- %v: unrated\n", s.Player.Name)
		default:
			fmt.Fprintf(&sb, "- %v: %d (%v)\n", s.Player.Name, s.Peak.Rating, s.Peak.Period)
		}
	}
	resp.Data.Content = truncateContent(sb.String())
	return finish(resp, broadcast)
}

func (b *bot) fideCompareCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subOptions(inter)
	id1, id2 := opts["id1"], opts["id2"]
	if id1 == "" || id2 == "" {
		resp.Data.Content = "Please provide two FIDE ids."
		log.Printf("discordbot.compare: %v", resp.Data.Content)
		return resp
	}
	rt, err := ratings.ParseRatingType(opts["type"])
	if err != nil {
		resp.Data.Content = err.Error()
		return resp
	}

	stats, err := b.provider.Compare(ctx, id1, id2)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error comparing %v and %v: %v", id1, id2, err)
		log.Printf("discordbot.compare: %v", resp.Data.Content)
		return resp
	}
	if stats == nil {
		resp.Data.Content = fmt.Sprintf("No comparison data for %v and %v.", id1, id2)
		return finish(resp, broadcast)
	}

	bd, err := stats.Record(rt).Breakdown()
	if bd.Total() <= 0 {
		resp.Data.Content = fmt.Sprintf("%v and %v have no %v games together.",
			id1, id2, strings.ToLower(rt.Label()))
		return finish(resp, broadcast)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%v vs %v (%v)**\n", id1, id2, rt.Label())
	for _, row := range []struct {
		label string
		side  ratings.SideResult
	}{
		{"As White", bd.White},
		{"As Black", bd.Black},
		{"Overall", bd.Combined()},
	} {
		fmt.Fprintf(&sb, "%v: %d games (W %d / D %d / L %d)\n", row.label,
			row.side.Total, row.side.Win, row.side.Draw, row.side.Lose)
	}
	if errors.Is(err, ratings.ErrNegativeLosses) {
		fmt.Fprintf(&sb, "_Provider totals are inconsistent: %v_\n", err)
	}
	resp.Data.Content = truncateContent(sb.String())
	return finish(resp, broadcast)
}

func (b *bot) fideShareCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subOptions(inter)

	list := compare.NewList(compare.DefaultPalette(), nil)
	list.Seed("id="+opts["ids"], compare.Player{})
	if len(list.IDs()) == 0 {
		resp.Data.Content = "Please provide at least one FIDE id."
		return resp
	}
	link, err := list.ShareURL(b.shareBase)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error building link: %v", err)
		log.Printf("discordbot.share: %v", resp.Data.Content)
		return resp
	}
	resp.Data.Content = link
	return finish(resp, broadcast)
}

func codeBlock(s string) string {
	return fmt.Sprintf("```\n%s\n```", truncateContent(s))
}

// https://discord.com/developers/docs/resources/channel#start-thread-in-forum-or-media-channel-forum-and-media-thread-message-params-object
// limits messages to 2k characters
func truncateContent(s string) string {
	const MsgLimit = 1988 // keep space for newlines and markdown
	runes := []rune(s)
	if len(runes) > MsgLimit {
		s = fmt.Sprintf("%v...", string(runes[:MsgLimit]))
	}
	return s
}
