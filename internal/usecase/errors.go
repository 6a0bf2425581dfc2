package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrExtractor  = errors.New("extractor error")
	ErrRepository = errors.New("repository error")
	ErrProbe      = errors.New("probe error")
	ErrNoVideo    = errors.New("no usable video stream")
)

func wrapExtractor(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrExtractor, err)
}

func wrapRepo(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrRepository, err)
}

func wrapProbe(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrProbe, err)
}
