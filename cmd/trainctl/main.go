// trainctl wraps the Docker workflow for the NVFP4 training lab: building
// the GPU image for the local hardware, running training sessions and
// validation, serving JupyterLab, and moving the image between machines as
// a compressed archive.
package main

import (
	"os"

	"github.com/nvfp4-lab/trainctl/cmd/trainctl/app"
)

func main() {
	os.Exit(app.Execute())
}
