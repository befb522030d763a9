package credstore

import (
	"errors"
	"fmt"
	"math"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/warpdl/chromeimport/internal/profile"
)

// localProfileIDPath is where Chrome keeps the per-profile id that native
// password backends key their entries with.
const localProfileIDPath = "profile.local_profile_id"

// ReadLocalProfileID reads profile.local_profile_id from a Preferences file.
func ReadLocalProfileID(fs afero.Fs, prefsPath string) (int, error) {
	data, err := profile.ReadFile(fs, prefsPath)
	if err != nil {
		return 0, err
	}
	if !gjson.ValidBytes(data) {
		return 0, errors.New("preferences file is not valid JSON")
	}
	v := gjson.GetBytes(data, localProfileIDPath)
	if !v.Exists() {
		return 0, fmt.Errorf("preferences have no %s", localProfileIDPath)
	}
	if v.Type != gjson.Number || v.Num != math.Trunc(v.Num) || v.Num < math.MinInt32 || v.Num > math.MaxInt32 {
		return 0, fmt.Errorf("%s is not an integer: %s", localProfileIDPath, v.Raw)
	}
	return int(v.Int()), nil
}
