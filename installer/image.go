/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package installer

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/UpdateHub/patchagent/utils"
)

const stagingSuffix = ".new"

var ErrSessionNotStarted = errors.New("no firmware image session in progress")

// ImageSink stages the image at "<TargetPath>.new" and renames it over
// TargetPath on Finalize, so an interrupted write never replaces the
// current image
type ImageSink struct {
	FileSystemBackend afero.Fs
	TargetPath        string
	// MaxImageSize, when non-zero, bounds the accepted image size
	MaxImageSize int64
	FreeSpace    func(path string) (uint64, error)

	file afero.File
}

func NewImageSink(fs afero.Fs, targetPath string, maxImageSize int64) *ImageSink {
	return &ImageSink{
		FileSystemBackend: fs,
		TargetPath:        targetPath,
		MaxImageSize:      maxImageSize,
		FreeSpace:         utils.FreeSpace,
	}
}

func (s *ImageSink) stagingPath() string {
	return s.TargetPath + stagingSuffix
}

func (s *ImageSink) Begin(size int64) error {
	if s.file != nil {
		return errors.New("firmware image session already in progress")
	}

	if s.MaxImageSize > 0 && size > s.MaxImageSize {
		return errors.Wrapf(ErrInsufficientSpace, "image of %d bytes exceeds the maximum of %d bytes", size, s.MaxImageSize)
	}

	if s.FreeSpace != nil {
		free, err := s.FreeSpace(filepath.Dir(s.TargetPath))
		if err != nil {
			return errors.Wrap(err, "failed to query free space")
		}

		// the current image is only replaced on Finalize
		if uint64(size) > free {
			return errors.Wrapf(ErrInsufficientSpace, "image of %d bytes, %d bytes available", size, free)
		}
	}

	file, err := s.FileSystemBackend.OpenFile(s.stagingPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "failed to create the staging image")
	}

	s.file = file

	return nil
}

func (s *ImageSink) Write(p []byte) (int, error) {
	if s.file == nil {
		return 0, ErrSessionNotStarted
	}

	return s.file.Write(p)
}

func (s *ImageSink) Finalize() error {
	if s.file == nil {
		return ErrSessionNotStarted
	}

	file := s.file
	s.file = nil

	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return err
	}

	return s.FileSystemBackend.Rename(s.stagingPath(), s.TargetPath)
}

func (s *ImageSink) Abort() error {
	var errorList []error

	if s.file != nil {
		if err := s.file.Close(); err != nil {
			errorList = append(errorList, err)
		}
		s.file = nil
	}

	err := s.FileSystemBackend.Remove(s.stagingPath())
	if err != nil && !os.IsNotExist(err) {
		errorList = append(errorList, err)
	}

	if len(errorList) > 0 {
		log.Warn("failed to clean up the staging image")
	}

	return utils.MergeErrorList(errorList)
}
