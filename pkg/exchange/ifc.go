package exchange

import (
	"fmt"

	"github.com/castorlab/castor/pkg/base"
)

// ExportIFCStub reserves the IFC export entry point. The schema mapping
// does not exist yet; callers get ErrNotImplemented rather than a silent
// no-op file.
func ExportIFCStub(path string) error {
	return fmt.Errorf("%w: IFC export to %s", base.ErrNotImplemented, path)
}
