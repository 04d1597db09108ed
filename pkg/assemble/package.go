package assemble

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/flowsmith/flowsmith/pkg/errors"
	"github.com/flowsmith/flowsmith/pkg/flow"
)

// Archive entry paths. The document path embeds the flow name.
const (
	manifestPath   = "META-INF/MANIFEST.MF"
	parametersPath = "src/main/resources/parameters.prop"
	documentDir    = "src/main/resources/scenarioflows/integrationflow/"
)

// DocumentPath returns the archive path of the process definition.
func DocumentPath(flowName string) string {
	return documentDir + flowName + ".iflw"
}

// BuildEntries assembles the archive file list in packaging order:
// manifest, parameters, document. The order is fixed so the zip is
// byte-identical across runs.
func BuildEntries(doc []byte, g *flow.Graph, flowName string) []Entry {
	return []Entry{
		{Path: manifestPath, Data: buildManifest(flowName)},
		{Path: parametersPath, Data: buildParameters(g)},
		{Path: DocumentPath(flowName), Data: doc},
	}
}

// buildManifest renders the bundle descriptor. No timestamps or build
// environment details: the manifest must not vary between runs.
func buildManifest(flowName string) []byte {
	var b strings.Builder
	b.WriteString("Manifest-Version: 1.0\r\n")
	b.WriteString("Bundle-ManifestVersion: 2\r\n")
	fmt.Fprintf(&b, "Bundle-Name: %s\r\n", flowName)
	fmt.Fprintf(&b, "Bundle-SymbolicName: %s; singleton:=true\r\n", flowName)
	b.WriteString("Bundle-Version: 1.0.0\r\n")
	b.WriteString("Origin-Bundle-Type: IntegrationFlow\r\n")
	fmt.Fprintf(&b, "Import-Package-Format: %s\r\n", FormatVersion)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// buildParameters collects every node's config into a properties file,
// one "nodeID.key=value" line per parameter. Nodes appear in insertion
// order, keys sorted within a node. Values have newlines escaped so each
// parameter stays on one line.
func buildParameters(g *flow.Graph) []byte {
	var b strings.Builder
	for _, n := range g.Nodes() {
		if len(n.Config) == 0 {
			continue
		}
		keys := make([]string, 0, len(n.Config))
		for k := range n.Config {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s.%s=%s\n", n.ID, k, escapeProp(n.Config[k]))
		}
	}
	return []byte(b.String())
}

var propEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"\n", "\\n",
	"\r", "\\r",
)

func escapeProp(v string) string { return propEscaper.Replace(v) }

// BuildArchive writes the entries into a zip with zeroed modification
// times and a fixed entry order, so identical entries always produce a
// byte-identical archive.
func BuildArchive(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		if err := errors.ValidateOutputPath(e.Path); err != nil {
			return nil, err
		}
		f, err := w.CreateHeader(&zip.FileHeader{
			Name:   e.Path,
			Method: zip.Deflate,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "create archive entry %s", e.Path)
		}
		if _, err := f.Write(e.Data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "write archive entry %s", e.Path)
		}
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "finalize archive")
	}
	return buf.Bytes(), nil
}
