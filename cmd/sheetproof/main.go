// Command sheetproof renders a reference sheet to an image so a revision
// can be proofed on screen before printing.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gocv.io/x/gocv"

	"beangauge/internal/sheet"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	name := flag.String("sheet", "letter", "Reference sheet: letter or a4")
	scale := flag.Float64("scale", 6, "Render resolution in pixels per millimeter")
	out := flag.String("o", "", "Output image path (.png)")
	flag.Parse()

	if *out == "" {
		fmt.Fprintln(os.Stderr, "Usage: sheetproof -o <out.png> [-sheet letter|a4] [-scale N]")
		os.Exit(1)
	}

	g, err := sheet.ByName(*name)
	if err != nil {
		log.Fatal(err)
	}
	if err := g.Validate(); err != nil {
		log.Fatal(err)
	}

	img := sheet.Render(g, *scale)
	defer img.Close()

	if ok := gocv.IMWrite(*out, img); !ok {
		log.Fatalf("write %s failed", *out)
	}
	log.Printf("rendered %s at %.1f px/mm to %s (%dx%d)", g.Version, *scale, *out, img.Cols(), img.Rows())
}
