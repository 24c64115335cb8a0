package epub

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ContainerPath is the well-known location of the container descriptor.
const ContainerPath = "META-INF/container.xml"

// opfSuffix is the conventional package document filename used when the
// container descriptor points nowhere useful.
const opfSuffix = "content.opf"

// LocateOPF returns the archive path of the package document. The first
// rootfile declared in container.xml wins when it exists in the archive;
// otherwise the first entry named like a package document is used.
func LocateOPF(a *Archive, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	declared, err := declaredOPFPath(a)
	if err != nil {
		log.Debug("container descriptor unusable", zap.Error(err))
	}
	if declared != "" && a.Has(declared) {
		return declared, nil
	}

	for _, name := range a.Names() {
		if strings.HasSuffix(name, opfSuffix) {
			log.Warn("package document not at declared path, using fallback",
				zap.String("declared", declared), zap.String("path", name))
			return name, nil
		}
	}

	return "", fmt.Errorf("cannot find package document: %w", ErrInvalidEPub)
}

// declaredOPFPath reads the full-path of the first rootfile in container.xml.
func declaredOPFPath(a *Archive) (string, error) {
	data, err := a.ReadFile(ContainerPath)
	if err != nil {
		return "", err
	}

	doc, err := parseXML(data)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", ContainerPath, err)
	}

	rootfile := firstChild(firstChild(doc.Root(), "rootfiles"), "rootfile")
	if rootfile == nil {
		return "", fmt.Errorf("%s has no rootfile entries", ContainerPath)
	}
	return strings.TrimPrefix(attrValue(rootfile, "full-path"), "/"), nil
}
