// Copyright (c) 2015-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prompt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// promptList prompts the user with the given prefix, list of valid responses,
// and default list entry to use.  The function will repeat the prompt to the
// user until they enter a valid response.
func promptList(reader *bufio.Reader, w io.Writer, prefix string,
	validResponses []string, defaultEntry string) (string, error) {

	// Setup the prompt according to the parameters.
	validStrings := strings.Join(validResponses, "/")
	var prompt string
	if defaultEntry != "" {
		prompt = fmt.Sprintf("%s (%s) [%s]: ", prefix, validStrings,
			defaultEntry)
	} else {
		prompt = fmt.Sprintf("%s (%s): ", prefix, validStrings)
	}

	// Prompt the user until one of the valid responses is given.
	for {
		fmt.Fprint(w, prompt)
		reply, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		reply = strings.TrimSpace(strings.ToLower(reply))
		if reply == "" {
			reply = defaultEntry
		}

		for _, validResponse := range validResponses {
			if reply == validResponse {
				return reply, nil
			}
		}
	}
}

// Confirm prompts the user for a boolean (yes/no) with the given prefix.
// The function will repeat the prompt to the user until they enter a valid
// response.
func Confirm(reader *bufio.Reader, w io.Writer, prefix string,
	defaultEntry string) (bool, error) {

	// Setup the valid responses.
	valid := []string{"n", "no", "y", "yes"}
	response, err := promptList(reader, w, prefix, valid, defaultEntry)
	if err != nil {
		return false, err
	}

	return response == "yes" || response == "y", nil
}

// Secret prompts the user for a secret, such as a WIF encoded private key,
// with the given prefix. When stdin is a terminal, the input is not echoed.
// Otherwise a single line is read from reader. The prompt is repeated until
// a non-empty response is entered. Callers should zero the returned slice
// once done with it.
func Secret(reader *bufio.Reader, prefix string) ([]byte, error) {
	prompt := fmt.Sprintf("%s: ", prefix)

	fd := int(os.Stdin.Fd())
	for {
		fmt.Print(prompt)

		var (
			secret []byte
			err    error
		)
		if term.IsTerminal(fd) {
			secret, err = term.ReadPassword(fd)
			fmt.Print("\n")
		} else {
			secret, err = reader.ReadBytes('\n')
			if err == io.EOF && len(secret) > 0 {
				err = nil
			}
		}
		if err != nil {
			return nil, err
		}

		trimmed := bytes.TrimSpace(secret)
		if len(trimmed) == 0 {
			continue
		}

		return trimmed, nil
	}
}
