//go:build windows

package setup

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"

	"github.com/kvesta/vsdetect/pkg/packages"
)

var (
	clsidSetupConfiguration = ole.NewGUID("{177F0C4A-1CD3-4DE7-A32C-71DBBB9FA36D}")

	iidSetupConfiguration     = ole.NewGUID("{42843719-DB4C-46C2-8E7C-64F1816EFD5B}")
	iidSetupConfiguration2    = ole.NewGUID("{26AAB78C-4A60-49D6-AF3B-3C35BC93365D}")
	iidSetupInstance2         = ole.NewGUID("{89143C9A-05AF-49B0-B717-72E218A2185C}")
	iidSetupPackageReference  = ole.NewGUID("{DA8D8A16-B2B6-4487-A2F1-594CCCCD6BF5}")
	iidSetupProductReference  = ole.NewGUID("{A170B5EF-223D-492B-B2D4-945032980685}")
	iidSetupProductReference2 = ole.NewGUID("{279A5DB3-7503-444B-B34D-308F961B9A06}")
)

// vtable slots, counted from IUnknown::QueryInterface.
const (
	slotQueryInterface = 0

	// ISetupConfiguration2
	slotEnumAllInstances = 6

	// IEnumSetupInstances
	slotNext = 3

	// ISetupInstance
	slotGetInstanceID          = 3
	slotGetInstallationName    = 5
	slotGetInstallationPath    = 6
	slotGetInstallationVersion = 7
	slotGetDisplayName         = 8

	// ISetupInstance2
	slotGetState       = 11
	slotGetPackages    = 12
	slotGetProduct     = 13
	slotGetProductPath = 14
	slotGetProperties  = 18
	slotGetEnginePath  = 19

	// ISetupPackageReference
	slotGetID          = 3
	slotGetVersion     = 4
	slotGetChip        = 5
	slotGetLanguage    = 6
	slotGetBranch      = 7
	slotGetType        = 8
	slotGetUniqueID    = 9
	slotGetIsExtension = 10

	// ISetupProductReference, ISetupProductReference2
	slotGetIsInstalled        = 11
	slotGetSupportsExtensions = 12

	// ISetupPropertyStore
	slotGetNames = 3
	slotGetValue = 4
)

const (
	hrNotFound      = 0x80070490
	hrChangedMode   = 0x80010106
	hrClassNotFound = 0x80040154
)

var (
	oleaut32 = windows.NewLazySystemDLL("oleaut32.dll")

	procSysFreeString      = oleaut32.NewProc("SysFreeString")
	procSafeArrayGetLBound = oleaut32.NewProc("SafeArrayGetLBound")
	procSafeArrayGetUBound = oleaut32.NewProc("SafeArrayGetUBound")
	procSafeArrayGetElem   = oleaut32.NewProc("SafeArrayGetElement")
	procSafeArrayDestroy   = oleaut32.NewProc("SafeArrayDestroy")
)

// comObject is a raw interface pointer returned by the setup API.
type comObject struct {
	unk *ole.IUnknown
}

func (o comObject) call(slot int, args ...uintptr) (uintptr, error) {
	vtbl := (*[32]uintptr)(unsafe.Pointer(o.unk.RawVTable))
	hr, _, _ := syscall.SyscallN(vtbl[slot], append([]uintptr{uintptr(unsafe.Pointer(o.unk))}, args...)...)
	if int32(hr) < 0 {
		return hr, ole.NewError(hr)
	}
	return hr, nil
}

func (o comObject) release() {
	if o.unk != nil {
		o.unk.Release()
	}
}

func (o comObject) queryInterface(iid *ole.GUID) (comObject, error) {
	var out *ole.IUnknown
	if _, err := o.call(slotQueryInterface, uintptr(unsafe.Pointer(iid)), uintptr(unsafe.Pointer(&out))); err != nil {
		return comObject{}, err
	}
	return comObject{unk: out}, nil
}

func (o comObject) bstr(slot int, args ...uintptr) (string, error) {
	var b *uint16
	if _, err := o.call(slot, append(args, uintptr(unsafe.Pointer(&b)))...); err != nil {
		return "", err
	}
	if b == nil {
		return "", nil
	}
	defer procSysFreeString.Call(uintptr(unsafe.Pointer(b)))

	return ole.BstrToString(b), nil
}

func (o comObject) boolean(slot int) (bool, error) {
	var v int16 // VARIANT_BOOL
	if _, err := o.call(slot, uintptr(unsafe.Pointer(&v))); err != nil {
		return false, err
	}
	return v != 0, nil
}

func (o comObject) object(slot int) (comObject, error) {
	var out *ole.IUnknown
	if _, err := o.call(slot, uintptr(unsafe.Pointer(&out))); err != nil {
		return comObject{}, err
	}
	return comObject{unk: out}, nil
}

func hresult(err error) uintptr {
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) {
		return oleErr.Code()
	}
	return 0
}

type comEnumerator struct{}

// NewEnumerator returns an enumerator backed by the SetupConfiguration COM
// server.
func NewEnumerator() Enumerator {
	return comEnumerator{}
}

func (comEnumerator) Open(ctx context.Context) (Instances, error) {
	runtime.LockOSThread()

	q := &comInstances{}
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		switch hresult(err) {
		case 1: // S_FALSE, already initialized on this thread
			q.uninit = true
		case hrChangedMode:
		default:
			runtime.UnlockOSThread()
			return nil, fmt.Errorf("initialize COM: %w", err)
		}
	} else {
		q.uninit = true
	}

	if err := q.open(); err != nil {
		q.Close()
		return nil, err
	}

	return q, nil
}

type comInstances struct {
	uninit bool
	config comObject
	enum   comObject
}

func (q *comInstances) open() error {
	unk, err := ole.CreateInstance(clsidSetupConfiguration, iidSetupConfiguration)
	if err != nil {
		if hresult(err) == hrClassNotFound {
			return errors.New("the Visual Studio setup configuration is not registered")
		}
		return fmt.Errorf("create setup configuration: %w", err)
	}
	q.config = comObject{unk: unk}

	config2, err := q.config.queryInterface(iidSetupConfiguration2)
	if err != nil {
		return fmt.Errorf("query ISetupConfiguration2: %w", err)
	}
	defer config2.release()

	q.enum, err = config2.object(slotEnumAllInstances)
	if err != nil {
		return fmt.Errorf("enumerate instances: %w", err)
	}

	return nil
}

func (q *comInstances) Next() (*Instance, error) {
	if q.enum.unk == nil {
		return nil, nil
	}

	var unk *ole.IUnknown
	var fetched uint32
	if _, err := q.enum.call(slotNext, 1, uintptr(unsafe.Pointer(&unk)), uintptr(unsafe.Pointer(&fetched))); err != nil {
		return nil, fmt.Errorf("next instance: %w", err)
	}
	if fetched != 1 || unk == nil {
		return nil, nil
	}

	inst := comObject{unk: unk}
	defer inst.release()

	return readInstance(inst)
}

func (q *comInstances) Close() error {
	q.enum.release()
	q.enum = comObject{}
	q.config.release()
	q.config = comObject{}

	if q.uninit {
		ole.CoUninitialize()
		q.uninit = false
	}
	runtime.UnlockOSThread()

	return nil
}

func readInstance(inst comObject) (*Instance, error) {
	var err error
	i := &Instance{}

	if i.ID, err = inst.bstr(slotGetInstanceID); err != nil {
		return nil, fmt.Errorf("instance id: %w", err)
	}
	if i.Name, err = inst.bstr(slotGetInstallationName); err != nil {
		return nil, fmt.Errorf("installation name: %w", err)
	}
	if i.DisplayName, err = inst.bstr(slotGetDisplayName, 0); err != nil {
		return nil, fmt.Errorf("display name: %w", err)
	}
	if i.Path, err = inst.bstr(slotGetInstallationPath); err != nil {
		return nil, fmt.Errorf("installation path: %w", err)
	}
	if i.Version, err = inst.bstr(slotGetInstallationVersion); err != nil {
		return nil, fmt.Errorf("installation version: %w", err)
	}

	inst2, err := inst.queryInterface(iidSetupInstance2)
	if err != nil {
		// older setup engines only expose ISetupInstance
		return i, nil
	}
	defer inst2.release()

	if i.Extended, err = readExtended(inst2); err != nil {
		return nil, err
	}

	return i, nil
}

func readExtended(inst2 comObject) (*Extended, error) {
	var err error
	ext := &Extended{}

	var state uint32
	if _, err = inst2.call(slotGetState, uintptr(unsafe.Pointer(&state))); err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}
	ext.State = State(state)

	store, err := inst2.object(slotGetProperties)
	switch {
	case hresult(err) == hrNotFound:
	case err != nil:
		return nil, fmt.Errorf("properties: %w", err)
	case store.unk != nil:
		ext.Properties, err = readProperties(store)
		store.release()
		if err != nil {
			return nil, fmt.Errorf("properties: %w", err)
		}
	}

	product, err := inst2.object(slotGetProduct)
	switch {
	case hresult(err) == hrNotFound:
	case err != nil:
		return nil, fmt.Errorf("product: %w", err)
	case product.unk != nil:
		ext.Product, err = readPackage(product)
		product.release()
		if err != nil {
			return nil, fmt.Errorf("product: %w", err)
		}
	}

	if ext.ProductPath, err = inst2.bstr(slotGetProductPath); err != nil {
		return nil, fmt.Errorf("product path: %w", err)
	}
	if ext.EnginePath, err = inst2.bstr(slotGetEnginePath); err != nil {
		return nil, fmt.Errorf("engine path: %w", err)
	}

	var sa *ole.SafeArray
	if _, err = inst2.call(slotGetPackages, uintptr(unsafe.Pointer(&sa))); err != nil {
		return nil, fmt.Errorf("packages: %w", err)
	}
	if ext.Packages, err = readPackages(sa); err != nil {
		return nil, fmt.Errorf("packages: %w", err)
	}

	return ext, nil
}

// readPackages reads and destroys a SAFEARRAY of ISetupPackageReference.
func readPackages(sa *ole.SafeArray) ([]*packages.Package, error) {
	if sa == nil {
		return nil, nil
	}
	defer procSafeArrayDestroy.Call(uintptr(unsafe.Pointer(sa)))

	var lower, upper int32
	if hr, _, _ := procSafeArrayGetLBound.Call(uintptr(unsafe.Pointer(sa)), 1, uintptr(unsafe.Pointer(&lower))); hr != 0 {
		return nil, ole.NewError(hr)
	}
	if hr, _, _ := procSafeArrayGetUBound.Call(uintptr(unsafe.Pointer(sa)), 1, uintptr(unsafe.Pointer(&upper))); hr != 0 {
		return nil, ole.NewError(hr)
	}

	var pkgs []*packages.Package
	for i := lower; i <= upper; i++ {
		var unk *ole.IUnknown
		if hr, _, _ := procSafeArrayGetElem.Call(uintptr(unsafe.Pointer(sa)), uintptr(unsafe.Pointer(&i)), uintptr(unsafe.Pointer(&unk))); hr != 0 {
			return nil, ole.NewError(hr)
		}
		if unk == nil {
			continue
		}

		elem := comObject{unk: unk}
		p, err := readPackage(elem)
		elem.release()
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, p)
	}

	return pkgs, nil
}

func readPackage(obj comObject) (*packages.Package, error) {
	ref, err := obj.queryInterface(iidSetupPackageReference)
	if err != nil {
		return nil, fmt.Errorf("query ISetupPackageReference: %w", err)
	}
	defer ref.release()

	p := &packages.Package{Origin: packages.OriginVendor}
	fields := []struct {
		slot int
		dst  *string
	}{
		{slotGetID, &p.ID},
		{slotGetVersion, &p.Version},
		{slotGetChip, &p.Chip},
		{slotGetLanguage, &p.Language},
		{slotGetBranch, &p.Branch},
		{slotGetType, &p.Type},
		{slotGetUniqueID, &p.UniqueID},
	}
	for _, f := range fields {
		if *f.dst, err = ref.bstr(f.slot); err != nil {
			return nil, err
		}
	}

	if p.IsExtension, err = ref.boolean(slotGetIsExtension); err != nil {
		return nil, err
	}

	if product, err := ref.queryInterface(iidSetupProductReference); err == nil {
		installed, err := product.boolean(slotGetIsInstalled)
		product.release()
		if err != nil {
			return nil, err
		}
		p.IsInstalled = &installed
	}

	if product2, err := ref.queryInterface(iidSetupProductReference2); err == nil {
		supports, err := product2.boolean(slotGetSupportsExtensions)
		product2.release()
		if err != nil {
			return nil, err
		}
		p.SupportsExtensions = &supports
	}

	return p, nil
}

func readProperties(store comObject) (map[string]string, error) {
	var sa *ole.SafeArray
	if _, err := store.call(slotGetNames, uintptr(unsafe.Pointer(&sa))); err != nil {
		return nil, err
	}

	props := map[string]string{}
	if sa == nil {
		return props, nil
	}

	conv := &ole.SafeArrayConversion{Array: sa}
	names := conv.ToStringArray()
	conv.Release()

	for _, name := range names {
		namePtr, err := windows.UTF16PtrFromString(name)
		if err != nil {
			return nil, err
		}

		var v ole.VARIANT
		ole.VariantInit(&v)
		if _, err := store.call(slotGetValue, uintptr(unsafe.Pointer(namePtr)), uintptr(unsafe.Pointer(&v))); err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}

		if val := v.Value(); val != nil {
			props[name] = fmt.Sprint(val)
		} else {
			props[name] = ""
		}
		ole.VariantClear(&v)
	}

	return props, nil
}
