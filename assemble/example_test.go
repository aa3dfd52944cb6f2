package assemble_test

import (
	"fmt"
	"image"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/assemble"
)

func ExamplePaginate() {
	front := &docsmith.Capture{Surface: "front", Image: image.NewRGBA(image.Rect(0, 0, 1008, 576)), Scale: 3}
	back := &docsmith.Capture{Surface: "back", Image: image.NewRGBA(image.Rect(0, 0, 1008, 576)), Scale: 3}

	pages, err := assemble.Paginate([]*docsmith.Capture{front, back}, docsmith.SurfaceSized(), docsmith.Landscape)
	if err != nil {
		panic(err)
	}
	for i, p := range pages {
		fmt.Printf("page %d: %s %.0fx%.0fpt\n", i+1, p.Surface, p.Width, p.Height)
	}
	// Output:
	// page 1: front 252x144pt
	// page 2: back 252x144pt
}

func ExampleFitHeight() {
	// An invoice captured at 2x onto an A4 page.
	fmt.Printf("%.2f\n", assemble.FitHeight(1588, 2400, docsmith.A4Width))
	// Output: 899.67
}
