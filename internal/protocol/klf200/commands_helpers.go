package klf200

import "fmt"

func errWrongParamsType(command string, params any) error {
	return fmt.Errorf("%s: unexpected params type %T", command, params)
}
