package operations

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// CompressedSuffix marks a gzip-compressed artifact in the extension chain.
const CompressedSuffix = ".gz"

// CompressGzip compresses inputPath into inputPath.gz and removes the
// uncompressed intermediate. It returns the new artifact path.
func CompressGzip(inputPath string) (string, error) {
	outputPath := inputPath + CompressedSuffix

	inFile, err := os.Open(inputPath)
	if err != nil {
		return "", fmt.Errorf("%w: open %q: %v", ErrCompressionFailed, inputPath, err)
	}
	defer inFile.Close()

	outFile, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("%w: create %q: %v", ErrCompressionFailed, outputPath, err)
	}

	writer := gzip.NewWriter(outFile)
	if _, err := io.Copy(writer, inFile); err != nil {
		outFile.Close()
		os.Remove(outputPath)
		return "", fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	if err := writer.Close(); err != nil {
		outFile.Close()
		os.Remove(outputPath)
		return "", fmt.Errorf("%w: flush: %v", ErrCompressionFailed, err)
	}
	if err := outFile.Close(); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("%w: close %q: %v", ErrCompressionFailed, outputPath, err)
	}

	if err := os.Remove(inputPath); err != nil {
		return "", fmt.Errorf("%w: remove intermediate %q: %v", ErrCompressionFailed, inputPath, err)
	}
	return outputPath, nil
}

// DecompressGzip reverses CompressGzip, writing the decompressed artifact
// next to the input with the .gz suffix stripped. The input is left in
// place; restore stages run inside a scoped temp directory.
func DecompressGzip(inputPath string) (string, error) {
	if !strings.HasSuffix(inputPath, CompressedSuffix) {
		return "", fmt.Errorf("%w: %q does not end in %s", ErrCompressionFailed, inputPath, CompressedSuffix)
	}
	outputPath := strings.TrimSuffix(inputPath, CompressedSuffix)

	inFile, err := os.Open(inputPath)
	if err != nil {
		return "", fmt.Errorf("%w: open %q: %v", ErrCompressionFailed, inputPath, err)
	}
	defer inFile.Close()

	reader, err := gzip.NewReader(inFile)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	defer reader.Close()

	outFile, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("%w: create %q: %v", ErrCompressionFailed, outputPath, err)
	}

	if _, err := io.Copy(outFile, reader); err != nil {
		outFile.Close()
		os.Remove(outputPath)
		return "", fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	if err := outFile.Close(); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("%w: close %q: %v", ErrCompressionFailed, outputPath, err)
	}
	return outputPath, nil
}
