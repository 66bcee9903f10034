package menu

import "errors"

var (
	ErrNoCurrentMenu   = errors.New("no current menu")
	ErrNoCurrentItem   = errors.New("no current item")
	ErrTagTooLong      = errors.New("tag too long")
	ErrDuplicateTag    = errors.New("duplicate menu tag")
	ErrNotWritable     = errors.New("item is not writable")
	ErrValidationSet   = errors.New("validation already set")
	ErrBuilderFinished = errors.New("model already finished")
	ErrBadIndirection  = errors.New("indirection size out of range")
	ErrUnknownSubmenu  = errors.New("unknown submenu tag")
	ErrNoMenus         = errors.New("no menus defined")
)
