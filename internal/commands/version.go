package commands

import (
	"fmt"
	"io"

	"bennypowers.dev/varmotion/internal/version"
	"github.com/pivotal-cf/jhanda"
)

type Version struct {
	output io.Writer
}

func NewVersion(output io.Writer) Version {
	return Version{output: output}
}

func (v Version) Execute([]string) error {
	_, err := fmt.Fprintf(v.output, "varmotion version %s\n", version.GetFullVersion())
	return err
}

func (v Version) Usage() jhanda.Usage {
	return jhanda.Usage{
		Description:      "This command prints the varmotion version number.",
		ShortDescription: "prints the varmotion version",
	}
}
