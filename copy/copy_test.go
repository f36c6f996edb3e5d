/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package copy

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type chunkRecorder struct {
	chunks []string
}

func (cr *chunkRecorder) Write(p []byte) (int, error) {
	cr.chunks = append(cr.chunks, string(p))
	return len(p), nil
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, fmt.Errorf("flash write failed")
}

type blockingReader struct {
	release chan struct{}
}

func (br *blockingReader) Read(p []byte) (int, error) {
	<-br.release
	return 0, io.EOF
}

type failingReader struct {
	data []byte
	err  error
}

func (fr *failingReader) Read(p []byte) (int, error) {
	if len(fr.data) == 0 {
		return 0, fr.err
	}

	n := copy(p, fr.data)
	fr.data = fr.data[n:]
	return n, nil
}

func TestCopy(t *testing.T) {
	wr := &chunkRecorder{}
	rd := strings.NewReader("0123456789")

	eio := ExtendedIO{}
	n, err := eio.Copy(wr, rd, time.Second, 4)

	assert.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, []string{"0123", "4567", "89"}, wr.chunks)
}

func TestCopyWithEmptySource(t *testing.T) {
	wr := &bytes.Buffer{}

	eio := ExtendedIO{}
	n, err := eio.Copy(wr, strings.NewReader(""), time.Second, 128)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Equal(t, 0, wr.Len())
}

func TestCopyWithInvalidChunkSize(t *testing.T) {
	eio := ExtendedIO{}
	n, err := eio.Copy(&bytes.Buffer{}, strings.NewReader("data"), time.Second, 0)

	assert.Equal(t, ErrInvalidChunkSize, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyWithReadTimeout(t *testing.T) {
	rd := &blockingReader{release: make(chan struct{})}
	defer close(rd.release)

	eio := ExtendedIO{}
	n, err := eio.Copy(&bytes.Buffer{}, rd, 10*time.Millisecond, 128)

	assert.Equal(t, ErrReadTimeout, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyWithReadError(t *testing.T) {
	wr := &bytes.Buffer{}
	rd := &failingReader{data: []byte("abc"), err: fmt.Errorf("connection reset")}

	eio := ExtendedIO{}
	n, err := eio.Copy(wr, rd, time.Second, 2)

	assert.EqualError(t, err, "connection reset")
	assert.Equal(t, int64(3), n)
	assert.Equal(t, "abc", wr.String())
}

func TestCopyWithWriteError(t *testing.T) {
	eio := ExtendedIO{}
	n, err := eio.Copy(failingWriter{}, strings.NewReader("abc"), time.Second, 2)

	assert.EqualError(t, err, "flash write failed")
	assert.Equal(t, int64(0), n)
}
