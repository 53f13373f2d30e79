package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/pivotal-cf/jhanda"
)

type helpData struct {
	Title         string
	Description   string
	Usage         string
	GlobalFlags   []string
	ArgumentsName string
	ArgumentLines []string
}

func (hd helpData) String() string {
	var sb strings.Builder

	if hd.Title != "varmotion" {
		sb.WriteString(hd.Title)
		sb.WriteString("\n\n")
	}
	if hd.Description != "" {
		sb.WriteString(hd.Description)
		sb.WriteString("\n\n")
	}
	if hd.Usage != "" {
		sb.WriteString("Usage: ")
		sb.WriteString(hd.Usage)
		sb.WriteString("\n")
	}
	for _, flag := range hd.GlobalFlags {
		if flag == "" {
			continue
		}
		sb.WriteString("  ")
		sb.WriteString(flag)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if hd.ArgumentsName != "" {
		sb.WriteString(hd.ArgumentsName)
		sb.WriteString("\n")
	}
	for _, line := range hd.ArgumentLines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

type Help struct {
	output   io.Writer
	flags    string
	commands jhanda.CommandSet
}

func NewHelp(output io.Writer, flags string, commands jhanda.CommandSet) Help {
	return Help{
		output:   output,
		flags:    flags,
		commands: commands,
	}
}

func (h Help) Execute(args []string) error {
	var data helpData
	if len(args) == 0 {
		data = h.buildGlobalContext()
	} else {
		var err error
		data, err = h.buildCommandContext(args[0])
		if err != nil {
			return err
		}
	}
	data.GlobalFlags = strings.Split(h.flags, "\n")

	_, err := fmt.Fprintf(h.output, "%s", data)
	return err
}

func (h Help) Usage() jhanda.Usage {
	return jhanda.Usage{
		Description:      "This command prints helpful usage information.",
		ShortDescription: "prints this usage information",
	}
}

func (h Help) buildGlobalContext() helpData {
	var names []string
	for name := range h.commands {
		names = append(names, name)
	}
	slices.Sort(names)

	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}

	var lines []string
	for _, name := range names {
		padded := name + strings.Repeat(" ", width-len(name))
		lines = append(lines, fmt.Sprintf("  %s  %s", padded, h.commands[name].Usage().ShortDescription))
	}

	return helpData{
		Title:         "varmotion",
		Description:   "varmotion animates CSS custom property values, resolving var() references every frame",
		Usage:         "varmotion [options] <command> [<args>]",
		ArgumentsName: "Commands:",
		ArgumentLines: lines,
	}
}

func (h Help) buildCommandContext(command string) (helpData, error) {
	usage, err := h.commands.Usage(command)
	if err != nil {
		return helpData{}, err
	}

	var (
		flagList        []string
		argsPlaceholder string
	)
	if usage.Flags != nil {
		flagUsage, err := jhanda.PrintUsage(usage.Flags)
		if err != nil {
			return helpData{}, err
		}
		for _, flag := range strings.Split(flagUsage, "\n") {
			if flag != "" {
				flagList = append(flagList, "  "+flag)
			}
		}
		if len(flagList) != 0 {
			argsPlaceholder = " [<args>]"
		}
	}

	return helpData{
		Title:         fmt.Sprintf("varmotion %s", command),
		Description:   usage.Description,
		Usage:         fmt.Sprintf("varmotion [options] %s%s", command, argsPlaceholder),
		ArgumentsName: "Flags:",
		ArgumentLines: flagList,
	}, nil
}
