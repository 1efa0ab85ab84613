//go:build darwin

package host

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation

#include <stdlib.h>
#include <string.h>
#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>

typedef struct {
	int valid;
	char *owner;
	char *name;
	int hasBounds;
	double x, y, w, h;
	int hasLayer;
	long long layer;
	int hasNumber;
	long long number;
} snowWindowRecord;

static CFArrayRef snowCopyWindowList(void) {
	return CGWindowListCopyWindowInfo(kCGWindowListOptionOnScreenOnly, kCGNullWindowID);
}

static CFIndex snowWindowCount(CFArrayRef list) {
	return list == NULL ? 0 : CFArrayGetCount(list);
}

static void snowReleaseList(CFArrayRef list) {
	if (list != NULL) {
		CFRelease(list);
	}
}

// snowCFStringToUTF8 returns a malloc'd UTF-8 copy of s, sized for s, or
// NULL. The caller frees it.
static char *snowCFStringToUTF8(CFStringRef s) {
	CFIndex n = CFStringGetMaximumSizeForEncoding(CFStringGetLength(s), kCFStringEncodingUTF8) + 1;
	char *buf = malloc(n);
	if (buf == NULL) {
		return NULL;
	}
	if (!CFStringGetCString(s, buf, n, kCFStringEncodingUTF8)) {
		free(buf);
		return NULL;
	}
	return buf;
}

static char *snowCopyString(CFDictionaryRef dict, CFStringRef key) {
	CFTypeRef v = CFDictionaryGetValue(dict, key);
	if (v == NULL || CFGetTypeID(v) != CFStringGetTypeID()) {
		return NULL;
	}
	return snowCFStringToUTF8((CFStringRef)v);
}

static void snowFreeRecord(snowWindowRecord *r) {
	free(r->owner);
	free(r->name);
	r->owner = NULL;
	r->name = NULL;
}

static int snowCopyInt(CFDictionaryRef dict, CFStringRef key, long long *out) {
	CFTypeRef v = CFDictionaryGetValue(dict, key);
	if (v == NULL || CFGetTypeID(v) != CFNumberGetTypeID()) {
		return 0;
	}
	return CFNumberGetValue((CFNumberRef)v, kCFNumberLongLongType, out) ? 1 : 0;
}

static void snowReadRecord(CFArrayRef list, CFIndex i, snowWindowRecord *r) {
	memset(r, 0, sizeof(*r));
	CFTypeRef v = CFArrayGetValueAtIndex(list, i);
	if (v == NULL || CFGetTypeID(v) != CFDictionaryGetTypeID()) {
		return;
	}
	CFDictionaryRef dict = (CFDictionaryRef)v;
	r->valid = 1;
	r->owner = snowCopyString(dict, kCGWindowOwnerName);
	r->name = snowCopyString(dict, kCGWindowName);

	CFTypeRef b = CFDictionaryGetValue(dict, kCGWindowBounds);
	if (b != NULL && CFGetTypeID(b) == CFDictionaryGetTypeID()) {
		CGRect rect;
		if (CGRectMakeWithDictionaryRepresentation((CFDictionaryRef)b, &rect)) {
			r->hasBounds = 1;
			r->x = rect.origin.x;
			r->y = rect.origin.y;
			r->w = rect.size.width;
			r->h = rect.size.height;
		}
	}
	r->hasLayer = snowCopyInt(dict, kCGWindowLayer, &r->layer);
	r->hasNumber = snowCopyInt(dict, kCGWindowNumber, &r->number);
}
*/
import "C"

func copyWindowRecords() []rawWindowRecord {
	list := C.snowCopyWindowList()
	defer C.snowReleaseList(list)

	n := int(C.snowWindowCount(list))
	out := make([]rawWindowRecord, n)
	var rec C.snowWindowRecord
	for i := 0; i < n; i++ {
		C.snowReadRecord(list, C.CFIndex(i), &rec)
		out[i] = fromCRecord(&rec)
		C.snowFreeRecord(&rec)
	}
	return out
}

func fromCRecord(rec *C.snowWindowRecord) rawWindowRecord {
	raw := rawWindowRecord{Valid: rec.valid != 0}
	if !raw.Valid {
		return raw
	}
	if rec.owner != nil {
		s := C.GoString(rec.owner)
		raw.Owner = &s
	}
	if rec.name != nil {
		s := C.GoString(rec.name)
		raw.Name = &s
	}
	if rec.hasBounds != 0 {
		raw.Bounds = &[4]float64{float64(rec.x), float64(rec.y), float64(rec.w), float64(rec.h)}
	}
	if rec.hasLayer != 0 {
		v := int64(rec.layer)
		raw.Layer = &v
	}
	if rec.hasNumber != 0 {
		v := int64(rec.number)
		raw.Number = &v
	}
	return raw
}
