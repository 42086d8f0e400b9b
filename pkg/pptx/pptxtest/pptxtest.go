// Package pptxtest builds small presentation packages for tests.
package pptxtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

const (
	nsP   = `xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
	nsA   = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"`
	nsR   = `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
	nsRel = `xmlns="http://schemas.openxmlformats.org/package/2006/relationships"`

	relBase    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	ctBase     = "application/vnd.openxmlformats-officedocument."
	xmlHeader  = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	emptyTree  = `<p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:spTree></p:cSld>`
	colorMapEl = `<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>`
)

const theme = xmlHeader + `<a:theme ` + nsA + ` name="Test"><a:themeElements>` +
	`<a:clrScheme name="Test"><a:dk1><a:srgbClr val="000000"/></a:dk1><a:lt1><a:srgbClr val="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="1F497D"/></a:dk2><a:lt2><a:srgbClr val="EEECE1"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="4F81BD"/></a:accent1><a:accent2><a:srgbClr val="C0504D"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="9BBB59"/></a:accent3><a:accent4><a:srgbClr val="8064A2"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="4BACC6"/></a:accent5><a:accent6><a:srgbClr val="F79646"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="0000FF"/></a:hlink><a:folHlink><a:srgbClr val="800080"/></a:folHlink></a:clrScheme>` +
	`<a:fontScheme name="Test"><a:majorFont><a:latin typeface="Arial"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Arial"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont></a:fontScheme>` +
	`<a:fmtScheme name="Test"><a:fillStyleLst><a:noFill/><a:noFill/><a:noFill/></a:fillStyleLst>` +
	`<a:lnStyleLst><a:ln><a:noFill/></a:ln><a:ln><a:noFill/></a:ln><a:ln><a:noFill/></a:ln></a:lnStyleLst>` +
	`<a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst>` +
	`<a:bgFillStyleLst><a:noFill/><a:noFill/><a:noFill/></a:bgFillStyleLst></a:fmtScheme>` +
	`</a:themeElements></a:theme>`

// Minimal returns a complete PowerPoint 2007 package with the given number
// of slides. The marker is written into every slide so tests can tell
// outputs apart.
func Minimal(slides int, marker string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(name, body string) {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			panic(err)
		}
	}

	var overrides, presRels, sldIDs strings.Builder
	for i := 1; i <= slides; i++ {
		fmt.Fprintf(&overrides, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="%spresentationml.slide+xml"/>`, i, ctBase)
		fmt.Fprintf(&presRels, `<Relationship Id="rId%d" Type="%sslide" Target="slides/slide%d.xml"/>`, i+2, relBase, i)
		fmt.Fprintf(&sldIDs, `<p:sldId id="%d" r:id="rId%d"/>`, 255+i, i+2)
	}

	write("[Content_Types].xml", xmlHeader+
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`+
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`+
		`<Default Extension="xml" ContentType="application/xml"/>`+
		`<Override PartName="/ppt/presentation.xml" ContentType="`+ctBase+`presentationml.presentation.main+xml"/>`+
		`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="`+ctBase+`presentationml.slideMaster+xml"/>`+
		`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="`+ctBase+`presentationml.slideLayout+xml"/>`+
		`<Override PartName="/ppt/theme/theme1.xml" ContentType="`+ctBase+`theme+xml"/>`+
		overrides.String()+
		`</Types>`)

	write("_rels/.rels", xmlHeader+`<Relationships `+nsRel+`>`+
		`<Relationship Id="rId1" Type="`+relBase+`officeDocument" Target="ppt/presentation.xml"/>`+
		`</Relationships>`)

	write("ppt/presentation.xml", xmlHeader+`<p:presentation `+nsA+` `+nsR+` `+nsP+`>`+
		`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`+
		`<p:sldIdLst>`+sldIDs.String()+`</p:sldIdLst>`+
		`<p:sldSz cx="9144000" cy="6858000"/><p:notesSz cx="6858000" cy="9144000"/>`+
		`</p:presentation>`)

	write("ppt/_rels/presentation.xml.rels", xmlHeader+`<Relationships `+nsRel+`>`+
		`<Relationship Id="rId1" Type="`+relBase+`slideMaster" Target="slideMasters/slideMaster1.xml"/>`+
		`<Relationship Id="rId2" Type="`+relBase+`theme" Target="theme/theme1.xml"/>`+
		presRels.String()+
		`</Relationships>`)

	write("ppt/slideMasters/slideMaster1.xml", xmlHeader+`<p:sldMaster `+nsA+` `+nsR+` `+nsP+`>`+
		emptyTree+colorMapEl+
		`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>`+
		`</p:sldMaster>`)

	write("ppt/slideMasters/_rels/slideMaster1.xml.rels", xmlHeader+`<Relationships `+nsRel+`>`+
		`<Relationship Id="rId1" Type="`+relBase+`slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`+
		`<Relationship Id="rId2" Type="`+relBase+`theme" Target="../theme/theme1.xml"/>`+
		`</Relationships>`)

	write("ppt/slideLayouts/slideLayout1.xml", xmlHeader+`<p:sldLayout `+nsA+` `+nsR+` `+nsP+` type="blank">`+
		emptyTree+`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`)

	write("ppt/slideLayouts/_rels/slideLayout1.xml.rels", xmlHeader+`<Relationships `+nsRel+`>`+
		`<Relationship Id="rId1" Type="`+relBase+`slideMaster" Target="../slideMasters/slideMaster1.xml"/>`+
		`</Relationships>`)

	write("ppt/theme/theme1.xml", theme)

	for i := 1; i <= slides; i++ {
		write(fmt.Sprintf("ppt/slides/slide%d.xml", i), xmlHeader+
			`<p:sld `+nsA+` `+nsR+` `+nsP+`><!-- `+marker+` -->`+emptyTree+
			`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
		write(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i), xmlHeader+`<Relationships `+nsRel+`>`+
			`<Relationship Id="rId1" Type="`+relBase+`slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`+
			`</Relationships>`)
	}

	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Marker returns the marker Minimal wrote into the first slide, or "".
func Marker(data []byte) string {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range r.File {
		if f.Name != "ppt/slides/slide1.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return ""
		}
		defer rc.Close()

		var body bytes.Buffer
		if _, err := body.ReadFrom(rc); err != nil {
			return ""
		}
		start := bytes.Index(body.Bytes(), []byte("<!-- "))
		end := bytes.Index(body.Bytes(), []byte(" -->"))
		if start < 0 || end < start {
			return ""
		}
		return string(body.Bytes()[start+5 : end])
	}
	return ""
}
