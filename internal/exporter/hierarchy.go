package exporter

import (
	"github.com/Faultbox/redux-exporter/internal/scene"
	"github.com/Faultbox/redux-exporter/pkg/chunkio"
	"github.com/Faultbox/redux-exporter/pkg/rdx"
)

// writeHierarchy writes the Hierarchy chunk: the world's children under a
// synthetic root, depth first.
func writeHierarchy(w *chunkio.Writer, root scene.Node) error {
	return w.Chunk(rdx.TagHierarchy, func() error {
		return writeNode(w, RootName, root.Children())
	})
}

func writeNode(w *chunkio.Writer, name string, children []scene.Node) error {
	if err := w.WriteString(name); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(len(children))); err != nil {
		return err
	}
	for _, c := range children {
		if err := writeNode(w, scene.StripPipes(c.FullPathName()), c.Children()); err != nil {
			return err
		}
	}
	return nil
}
