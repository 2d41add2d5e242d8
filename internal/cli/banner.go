package cli

import (
	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

func printBanner() {
	fig := figure.NewColorFigure("VeriJob", "doom", "cyan", true)
	fig.Print()

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	_, _ = cyan.Println("════════════════════════════════════════════════")
	_, _ = green.Println("    Job posting fraud detection")
	_, _ = cyan.Println("════════════════════════════════════════════════")
}
