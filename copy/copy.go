/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package copy

import (
	"io"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrInvalidChunkSize = errors.New("Copy error: chunkSize can't be less than 1")
	ErrReadTimeout      = errors.New("timeout")
)

type Interface interface {
	Copy(wr io.Writer, rd io.Reader, timeout time.Duration, chunkSize int) (int64, error)
}

type ExtendedIO struct {
}

type readResult struct {
	n   int
	err error
}

// Copy copies from rd to wr in chunks of chunkSize until EOF, returning
// the number of bytes written. A single read taking longer than timeout
// aborts the copy with ErrReadTimeout.
func (eio ExtendedIO) Copy(wr io.Writer, rd io.Reader, timeout time.Duration, chunkSize int) (int64, error) {
	if chunkSize < 1 {
		return 0, ErrInvalidChunkSize
	}

	var written int64

	buf := make([]byte, chunkSize)

Loop:
	for {
		// buffered so a read finishing after a timeout never blocks
		result := make(chan readResult, 1)

		go func() {
			n, err := rd.Read(buf)
			result <- readResult{n, err}
		}()

		select {
		case <-time.After(timeout):
			return written, ErrReadTimeout
		case r := <-result:
			if r.n > 0 {
				n, err := wr.Write(buf[0:r.n])
				written += int64(n)
				if err != nil {
					return written, err
				}
			}

			if r.err == io.EOF {
				break Loop
			}

			if r.err != nil {
				return written, r.err
			}
		}
	}

	return written, nil
}
