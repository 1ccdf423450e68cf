package rollgenerator

import (
	"fmt"
	"path/filepath"
)

func getFileNameWithoutExtension(filePath string) string {
	fileName := filepath.Base(filePath)
	return fileName[:len(fileName)-len(filepath.Ext(fileName))]
}

// OutputName is the image name for an input file rendered at tempo.
func OutputName(inputPath string, tempo int) string {
	return fmt.Sprintf("%s tempo%d.png", getFileNameWithoutExtension(inputPath), tempo)
}

// Title is the display name of an input file.
func Title(inputPath string) string {
	return getFileNameWithoutExtension(inputPath)
}
